package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
)

var (
	// ErrSubmissionTransport signals the order write did not complete. Nothing
	// was committed locally and the draft can be retried with the same id.
	ErrSubmissionTransport = errors.New("order submission failed")
	// ErrAlreadySubmitting rejects a submission while another is in flight.
	ErrAlreadySubmitting = errors.New("an order submission is already in flight")
	// ErrEmptyOrder rejects a submission whose cart has no lines.
	ErrEmptyOrder = errors.New("order has no items")
	// ErrInvalidSubmission wraps domain validation failures.
	ErrInvalidSubmission = errors.New("invalid order submission")
)

func mapHistoryError(err error) error {
	if errors.Is(err, ingestion.ErrUnparseable) || errors.Is(err, ingestion.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", ingestion.ErrTransport, err)
}
