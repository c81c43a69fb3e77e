package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartports "github.com/Apurer/go-sheet-storefront/internal/domains/cart/ports"
)

// Notices returned alongside cart mutations.
const (
	noticeAddedSuffix = " added to cart!"
	noticeRemoved     = "Item removed from cart"
)

// CartAPI exposes the session cart.
type CartAPI struct {
	service cartports.Service
}

func NewCartAPI(service cartports.Service) CartAPI {
	return CartAPI{service: service}
}

// Get /v1/cart
func (api *CartAPI) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCart(api.service.Snapshot(), ""))
}

// Post /v1/cart/items/:productId
// Adds one unit of a product
func (api *CartAPI) AddItem(c *gin.Context) {
	productID := c.Param("productId")
	snapshot, err := api.service.AddItem(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	notice := ""
	for _, line := range snapshot.Lines {
		if line.ProductID == productID {
			notice = line.Name + noticeAddedSuffix
			break
		}
	}
	c.JSON(http.StatusOK, toCart(snapshot, notice))
}

// Patch /v1/cart/items/:productId
// Changes a line quantity by delta; reaching zero removes the line
func (api *CartAPI) ChangeQuantity(c *gin.Context) {
	var payload ChangeQuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	snapshot, err := api.service.ChangeQuantity(c.Request.Context(), c.Param("productId"), *payload.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCart(snapshot, ""))
}

// Delete /v1/cart/items/:productId
func (api *CartAPI) RemoveItem(c *gin.Context) {
	snapshot, err := api.service.RemoveItem(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCart(snapshot, noticeRemoved))
}
