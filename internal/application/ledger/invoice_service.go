package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds invoice number allocation when a concurrent
// writer took the number first
const maxNumberAttempts = 3

// resyncer is implemented by sequences that can catch up with numbers
// allocated elsewhere
type resyncer interface {
	Resync(ctx context.Context) error
}

// InvoiceService issues invoices and applies payments for one tenant
type InvoiceService struct {
	*base
}

// CreateInvoice numbers, prices and stores a draft invoice. The document is
// validated before a number is allocated. With GL posting enabled the
// receivable is recognised in the same transaction.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*InvoiceResponse, error) {
	currency, err := s.parseCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	rate := input.ExchangeRate
	if rate.IsZero() {
		if rate, err = s.rateToBase(ctx, currency, input.InvoiceDate); err != nil {
			return nil, err
		}
	}
	header := ledger.InvoiceHeader{
		InvoiceDate:  input.InvoiceDate,
		DueDate:      input.DueDate,
		Currency:     currency,
		ExchangeRate: rate,
		CompanyID:    input.CompanyID,
		DealID:       input.DealID,
		ContactID:    input.ContactID,
		PaymentTerms: input.PaymentTerms,
		Notes:        input.Notes,
	}
	specs := itemSpecs(input.Lines)
	if err := ledger.ValidateInvoice(header, specs); err != nil {
		return nil, err
	}

	if s.settings.PostToGL {
		if _, err := s.seedDefaults(ctx); err != nil {
			return nil, err
		}
	}

	var (
		invoice *ledger.Invoice
		entry   *ledger.JournalEntry
	)
	for attempt := 1; ; attempt++ {
		invoice, entry, err = s.createInvoice(ctx, header, specs, input)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrAlreadyExists) || attempt >= maxNumberAttempts {
			return nil, err
		}
		s.log(ctx).Warn("Invoice number already taken, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if r, ok := s.repos.Sequence.(resyncer); ok {
			if rerr := r.Resync(ctx); rerr != nil {
				s.log(ctx).Warn("Failed to resync invoice sequence", zap.Error(rerr))
			}
		}
	}

	s.log(ctx).Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total", invoice.Total.String()),
		zap.String("currency", invoice.Currency.String()))

	resp := ToInvoiceResponse(invoice)
	if entry != nil {
		s.publish(ctx, entry, invoice)
	} else {
		s.publish(ctx, invoice)
	}
	return &resp, nil
}

// createInvoice is one allocation attempt
func (s *InvoiceService) createInvoice(ctx context.Context, header ledger.InvoiceHeader, specs []ledger.ItemSpec, input CreateInvoiceInput) (*ledger.Invoice, *ledger.JournalEntry, error) {
	var (
		invoice *ledger.Invoice
		entry   *ledger.JournalEntry
	)
	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requirePostable(ctx, lineAccountIDs(input.Lines)); err != nil {
			return err
		}
		seq, err := s.repos.Sequence.Next(ctx)
		if err != nil {
			return err
		}
		invoice, err = ledger.NewInvoice(s.tenantID, ledger.FormatInvoiceNumber(s.settings.InvoicePrefix, seq), header, specs)
		if err != nil {
			return err
		}
		if input.UserID != nil {
			invoice.SetCreatedBy(*input.UserID)
		}

		if s.settings.PostToGL {
			entry, err = s.postInvoice(ctx, invoice, input.UserID)
			if err != nil {
				return err
			}
			if entry != nil {
				invoice.LinkJournalEntry(entry.ID)
			}
		}
		return s.repos.Invoices.Create(ctx, invoice)
	})
	return invoice, entry, err
}

// postInvoice books Dr receivable / Cr revenue per line / Cr tax payable.
// A zero-total invoice posts nothing.
func (s *InvoiceService) postInvoice(ctx context.Context, inv *ledger.Invoice, userID *uuid.UUID) (*ledger.JournalEntry, error) {
	receivable, err := s.postingAccount(ctx, ledger.CodeAccountsReceivable)
	if err != nil {
		return nil, err
	}
	book := newLineBook(inv.Currency, inv.ExchangeRate)
	book.debit(receivable, inv.Total, "Receivable "+inv.InvoiceNumber)

	var defaultRevenue uuid.UUID
	for _, line := range inv.Lines {
		account := line.AccountID
		if account == nil {
			if defaultRevenue == uuid.Nil {
				if defaultRevenue, err = s.postingAccount(ctx, ledger.CodeAdvisoryFees); err != nil {
					return nil, err
				}
			}
			account = &defaultRevenue
		}
		book.credit(*account, line.LineTotal, "Revenue "+inv.InvoiceNumber)
	}
	if inv.TaxAmount.IsPositive() {
		tax, err := s.postingAccount(ctx, ledger.CodeTaxPayable)
		if err != nil {
			return nil, err
		}
		book.credit(tax, inv.TaxAmount, "Tax "+inv.InvoiceNumber)
	}
	if book.empty() {
		return nil, nil
	}

	id := inv.ID
	return s.postAutomatic(ctx, ledger.EntryDetails{
		EntryDate:  inv.InvoiceDate,
		Reference:  inv.InvoiceNumber,
		Memo:       "Invoice " + inv.InvoiceNumber,
		SourceType: ledger.SourceInvoice,
		SourceID:   &id,
	}, book, userID)
}

// RecordPayment applies a payment to an invoice under a row lock and
// re-derives its balance and status
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, input RecordPaymentInput) (*PaymentResponse, error) {
	var currency valueobject.Currency
	if strings.TrimSpace(input.Currency) != "" {
		cur, err := s.parseCurrency(input.Currency)
		if err != nil {
			return nil, err
		}
		currency = cur
	}

	var (
		invoice *ledger.Invoice
		payment *ledger.Payment
		entry   *ledger.JournalEntry
	)
	if s.settings.PostToGL {
		if _, err := s.seedDefaults(ctx); err != nil {
			return nil, err
		}
	}
	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.repos.Invoices.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		payment, err = ledger.NewPayment(invoice, ledger.PaymentDetails{
			PaymentDate:   input.PaymentDate,
			Amount:        input.Amount,
			Currency:      currency,
			ExchangeRate:  input.ExchangeRate,
			Method:        input.Method,
			BankReference: input.BankReference,
			Notes:         input.Notes,
		})
		if err != nil {
			return err
		}
		if err := invoice.ApplyPayment(payment, s.settings.AllowOverpayment); err != nil {
			return err
		}

		if s.settings.PostToGL {
			entry, err = s.postPayment(ctx, invoice, payment, input.UserID)
			if err != nil {
				return err
			}
			payment.LinkJournalEntry(entry.ID)
		}
		if err := s.repos.Invoices.CreatePayment(ctx, payment); err != nil {
			return err
		}
		return s.repos.Invoices.UpdateTotals(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("Payment recorded",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("balance_due", invoice.BalanceDue.String()),
		zap.String("status", string(invoice.Status)))

	resp := ToPaymentResponse(payment)
	if entry != nil {
		s.publish(ctx, entry, invoice)
	} else {
		s.publish(ctx, invoice)
	}
	return &resp, nil
}

// postPayment books Dr cash / Cr receivable
func (s *InvoiceService) postPayment(ctx context.Context, inv *ledger.Invoice, p *ledger.Payment, userID *uuid.UUID) (*ledger.JournalEntry, error) {
	cash, err := s.postingAccount(ctx, ledger.CodeCash)
	if err != nil {
		return nil, err
	}
	receivable, err := s.postingAccount(ctx, ledger.CodeAccountsReceivable)
	if err != nil {
		return nil, err
	}
	book := newLineBook(p.Currency, p.ExchangeRate)
	book.debit(cash, p.Amount, "Payment "+inv.InvoiceNumber)
	book.credit(receivable, p.Amount, "Payment "+inv.InvoiceNumber)

	id := p.ID
	return s.postAutomatic(ctx, ledger.EntryDetails{
		EntryDate:  p.PaymentDate,
		Reference:  p.BankReference,
		Memo:       "Payment for invoice " + inv.InvoiceNumber,
		SourceType: ledger.SourcePayment,
		SourceID:   &id,
	}, book, userID)
}

// ListInvoices returns a page of invoices, newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) (*ListResult[InvoiceResponse], error) {
	status, err := parseInvoiceStatus(filter.Status)
	if err != nil {
		return nil, err
	}
	query := ledger.InvoiceFilter{
		Pagination: shared.Pagination{Offset: filter.Offset, Limit: filter.Limit}.Normalize(),
		Status:     status,
	}

	invoices, err := s.repos.Invoices.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Invoices.Count(ctx, status)
	if err != nil {
		return nil, err
	}

	items := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		items[i] = ToInvoiceResponse(&invoices[i])
	}
	return &ListResult[InvoiceResponse]{
		Items:  items,
		Total:  total,
		Offset: query.Offset,
		Limit:  query.Limit,
	}, nil
}

// GetInvoice returns one invoice with lines and payments
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.repos.Invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// CountInvoices counts the tenant's invoices, optionally of one status
func (s *InvoiceService) CountInvoices(ctx context.Context, status string) (int64, error) {
	st, err := parseInvoiceStatus(status)
	if err != nil {
		return 0, err
	}
	return s.repos.Invoices.Count(ctx, st)
}

func parseInvoiceStatus(s string) (*ledger.InvoiceStatus, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	st, err := ledger.ParseInvoiceStatus(s)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
