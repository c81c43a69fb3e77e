package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// Responder writes Problem Details responses.
type Responder struct {
	// BaseURI is prepended to relative problem type URIs.
	BaseURI string
}

func NewResponder(baseURI string) *Responder {
	return &Responder{BaseURI: baseURI}
}

// DefaultResponder uses relative URIs for problem types.
var DefaultResponder = NewResponder("")

// Respond sends problem with its status and the problem+json content type.
// The request path becomes the instance when none is set.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError sends err as-is when it already is a ProblemDetail and as a
// 500 otherwise.
func (r *Responder) RespondError(c *gin.Context, err error) {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.Respond(c, ErrInternal.WithDetail(err.Error()))
}

func Respond(c *gin.Context, problem ProblemDetail) {
	DefaultResponder.Respond(c, problem)
}

// ErrorMapper turns an application error into a problem when it recognises it.
type ErrorMapper func(err error) (ProblemDetail, bool)

// MapSentinel matches errors wrapping target and reports them as problem,
// with the error text as detail.
func MapSentinel(target error, problem ProblemDetail) ErrorMapper {
	return func(err error) (ProblemDetail, bool) {
		if !errors.Is(err, target) {
			return ProblemDetail{}, false
		}
		return problem.WithDetail(err.Error()), true
	}
}

// ChainedResponder tries its mappers in order before the default handling.
type ChainedResponder struct {
	*Responder
	mappers []ErrorMapper
}

func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{
		Responder: NewResponder(baseURI),
		mappers:   mappers,
	}
}

func (r *ChainedResponder) AddMapper(mapper ErrorMapper) {
	r.mappers = append(r.mappers, mapper)
}

// Problem returns the problem the first matching mapper produces, err itself
// when it is a ProblemDetail, or a 500.
func (r *ChainedResponder) Problem(err error) ProblemDetail {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			return problem
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	return ErrInternal.WithDetail(err.Error())
}

func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	r.Respond(c, r.Problem(err))
}
