package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogports "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/ports"
)

// CatalogAPI serves the product listing.
type CatalogAPI struct {
	service catalogports.Service
}

func NewCatalogAPI(service catalogports.Service) CatalogAPI {
	return CatalogAPI{service: service}
}

// Get /v1/catalog/products
// Lists products, optionally filtered by search text and category
func (api *CatalogAPI) ListProducts(c *gin.Context) {
	products := api.service.Search(c.Query("q"), c.Query("category"))
	c.JSON(http.StatusOK, ProductList{Products: products, Total: len(products)})
}

// Get /v1/catalog/categories
func (api *CatalogAPI) ListCategories(c *gin.Context) {
	categories := api.service.Categories()
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, CategoryList{Categories: categories})
}

// Post /v1/catalog/refresh
// Reloads the catalog from its source. On failure the previous catalog keeps serving.
func (api *CatalogAPI) RefreshCatalog(c *gin.Context) {
	report, err := api.service.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
