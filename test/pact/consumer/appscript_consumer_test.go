//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-sheet-storefront/internal/clients/http/appscript"
	pacttest "github.com/Apurer/go-sheet-storefront/test/pact"
)

func orderBodyMatcher(orderID string) matchers.Map {
	example := pacttest.ExampleOrderPayload(orderID)
	return matchers.Map{
		"orderId":         matchers.Term(orderID, `^ORD\d+$`),
		"customerName":    matchers.Like(example["customerName"]),
		"customerPhone":   matchers.Like(example["customerPhone"]),
		"customerAddress": matchers.Like(example["customerAddress"]),
		"items":           matchers.Like(example["items"]),
		"total":           matchers.Like(example["total"]),
		"paymentMethod":   matchers.Term("COD", "^(COD|Online)$"),
		"status":          matchers.Like(example["status"]),
		"orderDate":       matchers.Term("2023-11-14", `^\d{4}-\d{2}-\d{2}$`),
		"deliveryDate":    matchers.Term("2023-11-15", `^\d{4}-\d{2}-\d{2}$`),
		"paymentId":       matchers.Like(example["paymentId"]),
	}
}

func examplePayload(orderID string) appscript.OrderPayload {
	return appscript.OrderPayload{
		OrderID:         orderID,
		CustomerName:    "Asha",
		CustomerPhone:   "9998887776",
		CustomerAddress: "12 MG Road",
		Items:           "Rice (2), Salt (1)",
		Total:           220,
		PaymentMethod:   "COD",
		Status:          "New",
		OrderDate:       "2023-11-14",
		DeliveryDate:    "2023-11-15",
	}
}

func TestStorefrontOrderScriptContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	pact.AddInteraction().
		Given(pacttest.StateOrderSheetReady).
		UponReceiving("a new order row").
		WithRequest("POST", "/exec", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header(appscript.IdempotencyHeader, matchers.S(pacttest.NewOrderID))
			b.JSONBody(orderBodyMatcher(pacttest.NewOrderID))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.JSONBody(matchers.Map{"result": matchers.S("success")})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderRecorded).
		UponReceiving("a repeated order row").
		WithRequest("POST", "/exec", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header(appscript.IdempotencyHeader, matchers.S(pacttest.RecordedOrderID))
			b.JSONBody(orderBodyMatcher(pacttest.RecordedOrderID))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.JSONBody(matchers.Map{
				"result":  matchers.S("duplicate"),
				"message": matchers.Like("order already recorded"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		host := config.Host
		if host == "" {
			host = "localhost"
		}
		client, err := appscript.NewClient(
			fmt.Sprintf("http://%s:%d/exec", host, config.Port),
			&http.Client{Timeout: 10 * time.Second},
		)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = client.AppendOrder(ctx, examplePayload(pacttest.NewOrderID), appscript.WithIdempotencyKey(pacttest.NewOrderID))
		if err != nil {
			return fmt.Errorf("append new order: %w", err)
		}
		err = client.AppendOrder(ctx, examplePayload(pacttest.RecordedOrderID), appscript.WithIdempotencyKey(pacttest.RecordedOrderID))
		if err != appscript.ErrDuplicate {
			return fmt.Errorf("expected duplicate, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}
