package ledger

import (
	"context"
	"strings"

	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VendorService manages vendors and their bills for one tenant
type VendorService struct {
	*base
}

// CreateVendor registers a vendor
func (s *VendorService) CreateVendor(ctx context.Context, input CreateVendorInput) (*VendorResponse, error) {
	vendor, err := ledger.NewVendor(s.tenantID, ledger.VendorDetails{
		Name:         input.Name,
		ContactEmail: input.ContactEmail,
		Phone:        input.Phone,
		Address:      input.Address,
		TaxID:        input.TaxID,
		PaymentTerms: input.PaymentTerms,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repos.Vendors.Save(ctx, vendor); err != nil {
		return nil, err
	}

	s.log(ctx).Info("Vendor created",
		zap.String("vendor_id", vendor.ID.String()),
		zap.String("name", vendor.Name))

	resp := ToVendorResponse(vendor)
	return &resp, nil
}

// GetVendor returns one vendor
func (s *VendorService) GetVendor(ctx context.Context, id uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.repos.Vendors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToVendorResponse(vendor)
	return &resp, nil
}

// ListVendors returns a page of vendors ordered by name
func (s *VendorService) ListVendors(ctx context.Context, offset, limit int) (*ListResult[VendorResponse], error) {
	page := shared.Pagination{Offset: offset, Limit: limit}.Normalize()
	vendors, err := s.repos.Vendors.FindAll(ctx, page)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Vendors.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]VendorResponse, len(vendors))
	for i := range vendors {
		items[i] = ToVendorResponse(&vendors[i])
	}
	return &ListResult[VendorResponse]{Items: items, Total: total, Offset: page.Offset, Limit: page.Limit}, nil
}

// CreateBill records a draft bill against a vendor. With GL posting enabled
// the payable is recognised in the same transaction.
func (s *VendorService) CreateBill(ctx context.Context, vendorID uuid.UUID, input CreateBillInput) (*BillResponse, error) {
	currency, err := s.parseCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	if s.settings.PostToGL {
		if _, err := s.seedDefaults(ctx); err != nil {
			return nil, err
		}
	}

	var (
		bill  *ledger.Bill
		entry *ledger.JournalEntry
	)
	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		vendor, err := s.repos.Vendors.FindByID(ctx, vendorID)
		if err != nil {
			return err
		}
		if err := s.requirePostable(ctx, lineAccountIDs(input.Lines)); err != nil {
			return err
		}
		bill, err = ledger.NewBill(vendor, ledger.BillHeader{
			BillNumber: input.BillNumber,
			BillDate:   input.BillDate,
			DueDate:    input.DueDate,
			Currency:   currency,
			DealID:     input.DealID,
			Notes:      input.Notes,
		}, itemSpecs(input.Lines))
		if err != nil {
			return err
		}
		if input.UserID != nil {
			bill.SetCreatedBy(*input.UserID)
		}

		if s.settings.PostToGL {
			entry, err = s.postBill(ctx, bill, input.UserID)
			if err != nil {
				return err
			}
			if entry != nil {
				bill.LinkJournalEntry(entry.ID)
			}
		}
		return s.repos.Bills.Create(ctx, bill)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("Bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.String("vendor_id", vendorID.String()),
		zap.String("total", bill.Total.String()),
		zap.String("currency", bill.Currency.String()))

	resp := ToBillResponse(bill)
	if entry != nil {
		s.publish(ctx, entry, bill)
	} else {
		s.publish(ctx, bill)
	}
	return &resp, nil
}

// postBill books Dr expense per line / Dr tax / Cr payable, converted with
// the latest stored rate for the bill currency
func (s *VendorService) postBill(ctx context.Context, bill *ledger.Bill, userID *uuid.UUID) (*ledger.JournalEntry, error) {
	rate, err := s.rateToBase(ctx, bill.Currency, bill.BillDate)
	if err != nil {
		return nil, err
	}
	label := "Bill"
	if bill.BillNumber != "" {
		label += " " + bill.BillNumber
	}

	book := newLineBook(bill.Currency, rate)
	var defaultExpense uuid.UUID
	for _, line := range bill.Lines {
		account := line.AccountID
		if account == nil {
			if defaultExpense == uuid.Nil {
				if defaultExpense, err = s.postingAccount(ctx, ledger.CodeProfessionalFees); err != nil {
					return nil, err
				}
			}
			account = &defaultExpense
		}
		book.debit(*account, line.LineTotal, strings.TrimSpace(line.Description))
	}
	if bill.TaxAmount.IsPositive() {
		tax, err := s.postingAccount(ctx, ledger.CodeTaxPayable)
		if err != nil {
			return nil, err
		}
		book.debit(tax, bill.TaxAmount, "Input tax "+label)
	}
	payable, err := s.postingAccount(ctx, ledger.CodeAccountsPayable)
	if err != nil {
		return nil, err
	}
	book.credit(payable, bill.Total, "Payable "+label)
	if book.empty() {
		return nil, nil
	}

	id := bill.ID
	return s.postAutomatic(ctx, ledger.EntryDetails{
		EntryDate:  bill.BillDate,
		Reference:  bill.BillNumber,
		Memo:       label,
		SourceType: ledger.SourceBill,
		SourceID:   &id,
	}, book, userID)
}

// ListBills returns a page of bills, optionally for one vendor
func (s *VendorService) ListBills(ctx context.Context, filter BillListFilter) (*ListResult[BillResponse], error) {
	query := ledger.BillFilter{
		Pagination: shared.Pagination{Offset: filter.Offset, Limit: filter.Limit}.Normalize(),
		VendorID:   filter.VendorID,
	}
	if strings.TrimSpace(filter.Status) != "" {
		status, err := ledger.ParseBillStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		query.Status = &status
	}

	bills, err := s.repos.Bills.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.repos.Bills.Count(ctx, query)
	if err != nil {
		return nil, err
	}
	items := make([]BillResponse, len(bills))
	for i := range bills {
		items[i] = ToBillResponse(&bills[i])
	}
	return &ListResult[BillResponse]{Items: items, Total: total, Offset: query.Offset, Limit: query.Limit}, nil
}

// GetBill returns one bill with its lines
func (s *VendorService) GetBill(ctx context.Context, id uuid.UUID) (*BillResponse, error) {
	bill, err := s.repos.Bills.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}
