package ledger

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared"
	"github.com/dealledger/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func advisoryInvoice() CreateInvoiceInput {
	return CreateInvoiceInput{
		InvoiceDate:  day(2),
		DueDate:      day(30),
		PaymentTerms: "Net 30",
		Lines: []DocumentLineInput{
			{Description: "Sell-side advisory retainer", Quantity: qty("2"), UnitPrice: d("1500"), TaxRate: d("20")},
			{Description: "Data room", UnitPrice: d("250.555")},
		},
	}
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := uuid.New()
	deal := uuid.New()

	input := advisoryInvoice()
	input.DealID = &deal
	input.UserID = &user
	inv, err := f.services.Invoices.CreateInvoice(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, "INV-00001", inv.InvoiceNumber)
	assert.Equal(t, "draft", inv.Status)
	assert.Equal(t, "EUR", inv.Currency)
	assert.True(t, inv.ExchangeRate.Equal(d("1")))
	assert.Equal(t, "2026-03-02", inv.InvoiceDate)
	assert.Equal(t, "2026-03-30", inv.DueDate)
	require.Len(t, inv.Lines, 2)
	assert.True(t, inv.Lines[0].LineTotal.Equal(d("3000")))
	assert.True(t, inv.Lines[0].TaxAmount.Equal(d("600")))
	assert.True(t, inv.Lines[1].Quantity.Equal(d("1")), "quantity defaults to 1")
	assert.True(t, inv.Lines[1].LineTotal.Equal(d("250.56")))
	assert.True(t, inv.Subtotal.Equal(d("3250.56")))
	assert.True(t, inv.TaxAmount.Equal(d("600")))
	assert.True(t, inv.Total.Equal(d("3850.56")))
	assert.True(t, inv.AmountPaid.IsZero())
	assert.True(t, inv.BalanceDue.Equal(inv.Total))
	assert.Equal(t, &deal, inv.DealID)
	assert.Equal(t, &user, inv.CreatedBy)
	assert.Nil(t, inv.JournalEntryID, "no GL posting by default")

	second, err := f.services.Invoices.CreateInvoice(ctx, advisoryInvoice())
	require.NoError(t, err)
	assert.Equal(t, "INV-00002", second.InvoiceNumber)

	stored, err := f.services.Invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, stored.InvoiceNumber)
	assert.True(t, stored.Total.Equal(inv.Total))
	assert.Len(t, stored.Lines, 2)

	assert.Equal(t, []string{ledger.EventTypeInvoiceCreated, ledger.EventTypeInvoiceCreated}, f.publisher.Types())
}

func TestInvoiceService_CreateInvoice_Rejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	byCode := f.accountsByCode(t)
	header := byCode["4000"].ID
	missing := uuid.New()

	tests := []struct {
		name   string
		mutate func(*CreateInvoiceInput)
		code   string
	}{
		{"no lines", func(in *CreateInvoiceInput) { in.Lines = nil }, "EMPTY_LINES"},
		{"bad currency", func(in *CreateInvoiceInput) { in.Currency = "EU" }, "INVALID_CURRENCY"},
		{"negative quantity", func(in *CreateInvoiceInput) { in.Lines[0].Quantity = qty("-1") }, "INVALID_LINE"},
		{"zero quantity", func(in *CreateInvoiceInput) { in.Lines[0].Quantity = qty("0") }, "INVALID_LINE"},
		{"due before issue", func(in *CreateInvoiceInput) { in.DueDate = day(1) }, "INVALID_DATE"},
		{"tax over 100", func(in *CreateInvoiceInput) { in.Lines[0].TaxRate = d("120") }, "INVALID_LINE"},
		{"header revenue account", func(in *CreateInvoiceInput) { in.Lines[0].AccountID = &header }, "ACCOUNT_NOT_POSTABLE"},
		{"unknown revenue account", func(in *CreateInvoiceInput) { in.Lines[0].AccountID = &missing }, "ACCOUNT_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := advisoryInvoice()
			tt.mutate(&input)
			_, err := f.services.Invoices.CreateInvoice(ctx, input)
			requireCode(t, err, tt.code)
		})
	}

	n, err := f.services.Invoices.CountInvoices(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInvoiceService_CreateInvoice_RejectedInvoiceKeepsNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("sequence untouched", func(t *testing.T) {
		seq := &mockSequence{}
		f := newFixture(t, withSequence(seq))

		input := advisoryInvoice()
		input.Lines[0].TaxRate = d("150")
		_, err := f.services.Invoices.CreateInvoice(ctx, input)
		requireCode(t, err, "INVALID_LINE")
		seq.AssertNotCalled(t, "Next", mock.Anything)
	})

	t.Run("redis sequence has no gaps", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		f := newFixture(t, withSequenceFactory(cache.NewSequenceFactory(client)))
		missing := uuid.New()

		rejected := []func(*CreateInvoiceInput){
			func(in *CreateInvoiceInput) { in.Lines[0].TaxRate = d("150") },
			func(in *CreateInvoiceInput) { in.DueDate = day(1) },
			func(in *CreateInvoiceInput) { in.Lines[0].Quantity = qty("0") },
			func(in *CreateInvoiceInput) { in.Lines[0].AccountID = &missing },
		}
		for _, mutate := range rejected {
			input := advisoryInvoice()
			mutate(&input)
			_, err := f.services.Invoices.CreateInvoice(ctx, input)
			require.Error(t, err)
		}

		first, err := f.services.Invoices.CreateInvoice(ctx, advisoryInvoice())
		require.NoError(t, err)
		assert.Equal(t, "INV-00001", first.InvoiceNumber)
		second, err := f.services.Invoices.CreateInvoice(ctx, advisoryInvoice())
		require.NoError(t, err)
		assert.Equal(t, "INV-00002", second.InvoiceNumber)
	})
}

func TestInvoiceService_RecordPayment_InheritsInvoiceRate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withSettings(func(s *Settings) { s.PostToGL = true }))
	byCode := f.accountsByCode(t)

	inv, err := f.services.Invoices.CreateInvoice(ctx, CreateInvoiceInput{
		InvoiceDate:  day(2),
		DueDate:      day(30),
		Currency:     "USD",
		ExchangeRate: d("0.9"),
		Lines:        []DocumentLineInput{{Description: "Buy-side advisory", UnitPrice: d("1000")}},
	})
	require.NoError(t, err)
	assert.True(t, f.balance(t, byCode["1100"].ID).Equal(d("900")))

	_, err = f.services.ExchangeRates.CreateRate(ctx, CreateRateInput{
		From: "USD", To: "EUR", Rate: d("0.95"), RateDate: day(20),
	})
	require.NoError(t, err)

	payment, err := f.services.Invoices.RecordPayment(ctx, inv.ID, RecordPaymentInput{
		PaymentDate: day(21),
		Amount:      d("1000"),
	})
	require.NoError(t, err)
	assert.True(t, payment.ExchangeRate.Equal(d("0.9")), payment.ExchangeRate.String())
	assert.True(t, f.balance(t, byCode["1100"].ID).IsZero(), "receivable clears in base currency")

	_, err = f.services.Invoices.RecordPayment(ctx, inv.ID, RecordPaymentInput{
		PaymentDate: day(22),
		Amount:      d("10.005"),
	})
	requireCode(t, err, "INVALID_PAYMENT")
}

func TestInvoiceService_CreateInvoice_RetriesTakenNumber(t *testing.T) {
	ctx := context.Background()
	seq := &mockSequence{}
	seq.On("Next", mock.Anything).Return(int64(1), nil).Times(2)
	seq.On("Next", mock.Anything).Return(int64(2), nil).Once()
	seq.On("Resync", mock.Anything).Return(nil).Once()
	f := newFixture(t, withSequence(seq))

	first, err := f.services.Invoices.CreateInvoice(ctx, advisoryInvoice())
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", first.InvoiceNumber)

	second, err := f.services.Invoices.CreateInvoice(ctx, advisoryInvoice())
	require.NoError(t, err)
	assert.Equal(t, "INV-00002", second.InvoiceNumber)

	seq.AssertExpectations(t)
	assert.Len(t, f.publisher.Types(), 2, "failed attempts publish nothing")
}

func TestInvoiceService_CreateInvoice_GivesUpAfterThreeAttempts(t *testing.T) {
	ctx := context.Background()
	seq := &mockSequence{}
	seq.On("Next", mock.Anything).Return(int64(7), nil)
	seq.On("Resync", mock.Anything).Return(nil)
	f := newFixture(t, withSequence(seq))

	_, err := f.services.Invoices.CreateInvoice(ctx, advisoryInvoice())
	require.NoError(t, err)

	_, err = f.services.Invoices.CreateInvoice(ctx, advisoryInvoice())
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	seq.AssertNumberOfCalls(t, "Next", 1+maxNumberAttempts)
	seq.AssertNumberOfCalls(t, "Resync", maxNumberAttempts-1)
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	input := advisoryInvoice()
	input.Lines = []DocumentLineInput{{Description: "Advisory", UnitPrice: d("1000"), TaxRate: d("20")}}
	inv, err := f.services.Invoices.CreateInvoice(ctx, input)
	require.NoError(t, err)
	require.True(t, inv.Total.Equal(d("1200")))

	pay := func(amount string) (*PaymentResponse, error) {
		return f.services.Invoices.RecordPayment(ctx, inv.ID, RecordPaymentInput{
			PaymentDate: day(10), Amount: d(amount), Method: "wire", BankReference: " REF-1 ",
		})
	}

	p, err := pay("500")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, p.InvoiceID)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, "REF-1", p.BankReference)
	assert.Equal(t, "2026-03-10", p.PaymentDate)

	got, err := f.services.Invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "partially_paid", got.Status)
	assert.True(t, got.AmountPaid.Equal(d("500")))
	assert.True(t, got.BalanceDue.Equal(d("700")))
	assert.Len(t, got.Payments, 1)

	_, err = pay("700.01")
	requireCode(t, err, "OVERPAYMENT")

	_, err = pay("700")
	require.NoError(t, err)
	got, err = f.services.Invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", got.Status)
	assert.True(t, got.BalanceDue.IsZero())
	assert.Len(t, got.Payments, 2)

	_, err = pay("0")
	requireCode(t, err, "INVALID_PAYMENT")

	_, err = f.services.Invoices.RecordPayment(ctx, inv.ID, RecordPaymentInput{
		PaymentDate: day(10), Amount: d("1"), Currency: "USD",
	})
	requireCode(t, err, "CURRENCY_MISMATCH")

	_, err = f.services.Invoices.RecordPayment(ctx, uuid.New(), RecordPaymentInput{PaymentDate: day(10), Amount: d("1")})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceService_RecordPayment_AllowOverpayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withSettings(func(s *Settings) { s.AllowOverpayment = true }))

	input := advisoryInvoice()
	input.Lines = []DocumentLineInput{{Description: "Advisory", UnitPrice: d("1200")}}
	inv, err := f.services.Invoices.CreateInvoice(ctx, input)
	require.NoError(t, err)

	_, err = f.services.Invoices.RecordPayment(ctx, inv.ID, RecordPaymentInput{PaymentDate: day(10), Amount: d("1500")})
	require.NoError(t, err)

	got, err := f.services.Invoices.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", got.Status)
	assert.True(t, got.BalanceDue.Equal(d("-300")))
}

func TestInvoiceService_PostsToLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withSettings(func(s *Settings) { s.PostToGL = true }))
	byCode := f.accountsByCode(t)
	success := byCode["4030"].ID

	input := advisoryInvoice()
	input.Lines = append(input.Lines, DocumentLineInput{Description: "Success fee", UnitPrice: d("10000"), AccountID: &success})
	inv, err := f.services.Invoices.CreateInvoice(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, inv.JournalEntryID)

	entry, err := f.services.Accounting.GetEntry(ctx, *inv.JournalEntryID)
	require.NoError(t, err)
	assert.Equal(t, "posted", entry.Status)
	assert.Equal(t, "invoice", entry.SourceType)
	assert.Equal(t, &inv.ID, entry.SourceID)
	assert.Equal(t, inv.InvoiceNumber, entry.Reference)
	assert.Len(t, entry.Lines, 4, "receivable, two revenue accounts, tax")

	assert.True(t, f.balance(t, byCode["1100"].ID).Equal(d("13850.56")))
	assert.True(t, f.balance(t, byCode["4010"].ID).Equal(d("-3250.56")))
	assert.True(t, f.balance(t, byCode["4030"].ID).Equal(d("-10000")))
	assert.True(t, f.balance(t, byCode["2300"].ID).Equal(d("-600")))

	p, err := f.services.Invoices.RecordPayment(ctx, inv.ID, RecordPaymentInput{PaymentDate: day(12), Amount: d("5000")})
	require.NoError(t, err)
	require.NotNil(t, p.JournalEntryID)

	payEntry, err := f.services.Accounting.GetEntry(ctx, *p.JournalEntryID)
	require.NoError(t, err)
	assert.Equal(t, "payment", payEntry.SourceType)
	assert.Equal(t, &p.ID, payEntry.SourceID)

	assert.True(t, f.balance(t, byCode["1010"].ID).Equal(d("5000")))
	assert.True(t, f.balance(t, byCode["1100"].ID).Equal(d("8850.56")))

	tb, err := f.services.Accounting.TrialBalance(ctx)
	require.NoError(t, err)
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))

	assert.Equal(t, []string{
		ledger.EventTypeJournalEntryCreated,
		ledger.EventTypeJournalEntryPosted,
		ledger.EventTypeInvoiceCreated,
		ledger.EventTypeJournalEntryCreated,
		ledger.EventTypeJournalEntryPosted,
		ledger.EventTypePaymentRecorded,
	}, f.publisher.Types())
}

func TestInvoiceService_PostsToLedger_SeedsChart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withSettings(func(s *Settings) { s.PostToGL = true }))

	inv, err := f.services.Invoices.CreateInvoice(ctx, advisoryInvoice())
	require.NoError(t, err)
	assert.NotNil(t, inv.JournalEntryID)

	accounts, err := f.services.Accounting.ListAccounts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, accounts, 22)
}

func TestInvoiceService_ForeignCurrencyUsesStoredRate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withSettings(func(s *Settings) { s.PostToGL = true }))
	byCode := f.accountsByCode(t)

	_, err := f.services.ExchangeRates.CreateRate(ctx, CreateRateInput{From: "USD", To: "EUR", Rate: d("0.9"), RateDate: day(1)})
	require.NoError(t, err)

	input := advisoryInvoice()
	input.Currency = "usd"
	input.Lines = []DocumentLineInput{{Description: "Advisory", UnitPrice: d("1000")}}
	inv, err := f.services.Invoices.CreateInvoice(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "USD", inv.Currency)
	assert.True(t, inv.ExchangeRate.Equal(d("0.9")))

	assert.True(t, f.balance(t, byCode["1100"].ID).Equal(d("900")))

	input.ExchangeRate = d("0.95")
	explicit, err := f.services.Invoices.CreateInvoice(ctx, input)
	require.NoError(t, err)
	assert.True(t, explicit.ExchangeRate.Equal(d("0.95")))
}

func TestInvoiceService_ListInvoices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		inv, err := f.services.Invoices.CreateInvoice(ctx, advisoryInvoice())
		require.NoError(t, err)
		ids = append(ids, inv.ID)
	}
	_, err := f.services.Invoices.RecordPayment(ctx, ids[0], RecordPaymentInput{PaymentDate: day(5), Amount: d("100")})
	require.NoError(t, err)

	page, err := f.services.Invoices.ListInvoices(ctx, InvoiceListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Limit)

	partial, err := f.services.Invoices.ListInvoices(ctx, InvoiceListFilter{Status: "partially_paid"})
	require.NoError(t, err)
	require.Equal(t, int64(1), partial.Total)
	assert.Equal(t, ids[0], partial.Items[0].ID)

	n, err := f.services.Invoices.CountInvoices(ctx, "draft")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = f.services.Invoices.ListInvoices(ctx, InvoiceListFilter{Status: "lost"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.services.Invoices.GetInvoice(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
