package storefrontserver

import (
	cartdomain "github.com/Apurer/go-sheet-storefront/internal/domains/cart/domain"
	catalogdomain "github.com/Apurer/go-sheet-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

type ProductList struct {
	Products []catalogdomain.Product `json:"products"`
	Total    int                     `json:"total"`
}

type CategoryList struct {
	Categories []string `json:"categories"`
}

type CartLine struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	Price     money.Amount `json:"price"`
	Image     string       `json:"image"`
	Quantity  int          `json:"quantity"`
	LineTotal money.Amount `json:"lineTotal"`
}

// Cart is the cart view. ItemCount is the badge number.
type Cart struct {
	Lines     []CartLine   `json:"lines"`
	ItemCount int          `json:"itemCount"`
	Subtotal  money.Amount `json:"subtotal"`
	Notice    string       `json:"notice,omitempty"`
}

type ChangeQuantityRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

type IdentityRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type PaymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

type ConfirmRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// PaymentSuccessRequest is posted by the Razorpay handler callback.
type PaymentSuccessRequest struct {
	Token     string `json:"token" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
}

// PaymentDismissRequest is posted by the Razorpay modal ondismiss callback.
type PaymentDismissRequest struct {
	Token string `json:"token" binding:"required"`
}

type DispatchResult struct {
	OrderID    string `json:"orderId"`
	Dispatched bool   `json:"dispatched"`
}

func toCart(snapshot cartdomain.Snapshot, notice string) Cart {
	lines := make([]CartLine, 0, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		lines = append(lines, CartLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Image:     l.Image,
			Quantity:  l.Quantity,
			LineTotal: l.Total(),
		})
	}
	return Cart{Lines: lines, ItemCount: snapshot.ItemCount, Subtotal: snapshot.Subtotal, Notice: notice}
}
