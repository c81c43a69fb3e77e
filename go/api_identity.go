package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	customersports "github.com/Apurer/go-sheet-storefront/internal/domains/customers/ports"
)

// IdentityAPI reads and captures the remembered customer phone.
type IdentityAPI struct {
	service customersports.Service
}

func NewIdentityAPI(service customersports.Service) IdentityAPI {
	return IdentityAPI{service: service}
}

// Get /v1/identity
func (api *IdentityAPI) GetIdentity(c *gin.Context) {
	identity, err := api.service.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}

// Put /v1/identity
// Captures the phone on first visit. A remembered phone is returned unchanged.
func (api *IdentityAPI) CaptureIdentity(c *gin.Context) {
	var payload IdentityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	identity, err := api.service.Capture(c.Request.Context(), payload.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}
