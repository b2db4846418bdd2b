package ledger

import (
	"strings"
	"time"

	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ItemSpec is the caller-supplied shape of an invoice or bill line
type ItemSpec struct {
	Description string
	// Quantity is 1 when nil
	Quantity  *decimal.Decimal
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
	AccountID *uuid.UUID
}

// pricedItem is an ItemSpec with its computed amounts
type pricedItem struct {
	ItemSpec
	Quantity  decimal.Decimal
	LineTotal decimal.Decimal
	TaxAmount decimal.Decimal
}

// priceItems validates line specs and computes line_total = qty x price and
// tax = line_total x rate / 100, each rounded to the document currency.
// A nil quantity means 1; an explicit quantity must be positive.
func priceItems(specs []ItemSpec, currency valueobject.Currency) ([]pricedItem, decimal.Decimal, decimal.Decimal, error) {
	if len(specs) == 0 {
		return nil, decimal.Zero, decimal.Zero, shared.NewValidationError("EMPTY_LINES", "at least one line is required")
	}

	items := make([]pricedItem, 0, len(specs))
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for i, spec := range specs {
		n := i + 1
		spec.Description = strings.TrimSpace(spec.Description)
		if spec.Description == "" {
			return nil, decimal.Zero, decimal.Zero, shared.NewValidationError("INVALID_LINE", "line %d: description is required", n)
		}
		qty := decimal.NewFromInt(1)
		if spec.Quantity != nil {
			qty = *spec.Quantity
		}
		if !qty.IsPositive() {
			return nil, decimal.Zero, decimal.Zero, shared.NewValidationError("INVALID_LINE", "line %d: quantity must be positive", n)
		}
		if spec.UnitPrice.IsNegative() {
			return nil, decimal.Zero, decimal.Zero, shared.NewValidationError("INVALID_LINE", "line %d: unit price cannot be negative", n)
		}
		if spec.TaxRate.IsNegative() || spec.TaxRate.GreaterThan(hundred) {
			return nil, decimal.Zero, decimal.Zero, shared.NewValidationError("INVALID_LINE", "line %d: tax rate must be between 0 and 100", n)
		}

		lineTotal := valueobject.RoundAmount(qty.Mul(spec.UnitPrice), currency)
		tax := valueobject.RoundAmount(lineTotal.Mul(spec.TaxRate).Div(hundred), currency)

		subtotal = subtotal.Add(lineTotal)
		taxTotal = taxTotal.Add(tax)
		items = append(items, pricedItem{ItemSpec: spec, Quantity: qty, LineTotal: lineTotal, TaxAmount: tax})
	}
	return items, subtotal, taxTotal, nil
}

func validateDocumentDates(issued, due time.Time) error {
	if issued.IsZero() {
		return shared.NewValidationError("INVALID_DATE", "document date is required")
	}
	if due.IsZero() {
		return shared.NewValidationError("INVALID_DATE", "due date is required")
	}
	if truncateToDate(due).Before(truncateToDate(issued)) {
		return shared.NewValidationError("INVALID_DATE", "due date cannot be before the document date")
	}
	return nil
}
