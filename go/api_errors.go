package storefrontserver

import (
	"github.com/gin-gonic/gin"

	cartapp "github.com/Apurer/go-sheet-storefront/internal/domains/cart/application"
	checkoutdomain "github.com/Apurer/go-sheet-storefront/internal/domains/checkout/domain"
	customersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/customers/domain"
	ordersapp "github.com/Apurer/go-sheet-storefront/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	apierrors "github.com/Apurer/go-sheet-storefront/internal/shared/errors"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

// responder maps storefront errors to problems. The first matching mapper wins.
var responder = apierrors.NewChainedResponder("",
	apierrors.MapSentinel(cartapp.ErrUnknownProduct, apierrors.ErrNotFound),
	apierrors.MapSentinel(cartapp.ErrCartHeld, apierrors.ErrConflict),
	apierrors.MapSentinel(checkoutdomain.ErrEmptyCart, apierrors.ErrConflict),
	apierrors.MapSentinel(ordersapp.ErrEmptyOrder, apierrors.ErrConflict),
	apierrors.MapSentinel(ordersapp.ErrAlreadySubmitting, apierrors.ErrConflict),
	apierrors.MapSentinel(checkoutdomain.ErrNoPaymentPending, apierrors.ErrConflict),
	apierrors.MapSentinel(checkoutdomain.ErrInvalidTransition, apierrors.ErrConflict),
	apierrors.MapSentinel(customersdomain.ErrInvalidPhone, apierrors.ErrBadRequest),
	apierrors.MapSentinel(ordersdomain.ErrInvalidPaymentMethod, apierrors.ErrBadRequest),
	apierrors.MapSentinel(ordersapp.ErrInvalidSubmission, apierrors.ErrBadRequest),
	apierrors.MapSentinel(ordersapp.ErrSubmissionTransport, apierrors.ErrUpstream),
	apierrors.MapSentinel(ingestion.ErrUnparseable, apierrors.ErrUpstreamMalformed),
	apierrors.MapSentinel(ingestion.ErrTransport, apierrors.ErrUpstream),
)

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

// respondErrorWith attaches extra context to the mapped problem.
func respondErrorWith(c *gin.Context, err error, key string, value any) {
	respondProblem(c, responder.Problem(err).WithExtension(key, value))
}

func respondBadRequest(c *gin.Context, err error) {
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}
