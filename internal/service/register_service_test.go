package service

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"go-timeclock/internal/model"
	"go-timeclock/internal/sales"
)

type salesFixture struct {
	sales     *salesService
	register  *registerService
	txs       *mockTransactionRepo
	sessions  *mockRegisterRepo
	users     *mockUserRepo
	publisher *recordingPublisher
}

func setupTestSalesFixture() *salesFixture {
	txs := newMockTransactionRepo()
	sessions := newMockRegisterRepo()
	users := newMockUserRepo()
	publisher := &recordingPublisher{}
	return &salesFixture{
		sales:     NewSalesService(txs, sessions, users, jst, publisher, nopLogger).(*salesService),
		register:  NewRegisterService(sessions, txs, publisher, nopLogger).(*registerService),
		txs:       txs,
		sessions:  sessions,
		users:     users,
		publisher: publisher,
	}
}

func (f *salesFixture) setNow(t time.Time) {
	f.sales.now = func() time.Time { return t }
	f.register.now = func() time.Time { return t }
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func TestSalesService_RecordTransaction(t *testing.T) {
	f := setupTestSalesFixture()
	f.users.addUser("aoi@example.com", "Aoi", model.RoleCast)
	f.setNow(at(1, 20, 0))

	email := "aoi@example.com"
	tx, err := f.sales.RecordTransaction(&RecordTransactionRequest{
		AttributedEmail: &email,
		PaymentMethod:   "cash",
		Amount:          3000,
	}, "cashier")
	if err != nil {
		t.Fatalf("RecordTransaction should succeed: %v", err)
	}
	if !tx.OccurredAt.Equal(at(1, 20, 0)) {
		t.Errorf("expected occurred_at to default to now, got %v", tx.OccurredAt)
	}
	if tx.RegisterSessionID != nil {
		t.Error("no register is open, session link should be empty")
	}

	empty := ""
	common, err := f.sales.RecordTransaction(&RecordTransactionRequest{AttributedEmail: &empty, PaymentMethod: "qr", Amount: 500}, "cashier")
	if err != nil {
		t.Fatal(err)
	}
	if common.AttributedEmail != nil {
		t.Errorf("empty attribution should be stored as common, got %q", *common.AttributedEmail)
	}

	if got := f.publisher.actions(); !slices.Equal(got, []string{"transaction_recorded", "transaction_recorded"}) {
		t.Errorf("unexpected ws events: %v", got)
	}
}

func TestSalesService_RecordTransactionRejectsBadInput(t *testing.T) {
	f := setupTestSalesFixture()
	f.setNow(at(1, 20, 0))

	if _, err := f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "barter", Amount: 100}, "cashier"); err == nil {
		t.Error("expected validation error for unknown payment method")
	}
	if _, err := f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "cash", Amount: -5}, "cashier"); err == nil {
		t.Error("expected validation error for negative amount")
	}

	ghost := "ghost@example.com"
	_, err := f.sales.RecordTransaction(&RecordTransactionRequest{AttributedEmail: &ghost, PaymentMethod: "cash", Amount: 100}, "cashier")
	if !errors.Is(err, ErrUnknownAttribution) {
		t.Errorf("expected ErrUnknownAttribution, got %v", err)
	}
}

func TestSalesService_DailyReport(t *testing.T) {
	f := setupTestSalesFixture()
	f.users.addUser("aoi@example.com", "Aoi", model.RoleCast)
	email := "aoi@example.com"

	f.sales.RecordTransaction(&RecordTransactionRequest{AttributedEmail: &email, PaymentMethod: "cash", Amount: 3000, OccurredAt: ptrTime(at(1, 20, 0))}, "c")
	f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "card", Amount: 5000, OccurredAt: ptrTime(at(2, 1, 0))}, "c")
	f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "cash", Amount: 700, OccurredAt: ptrTime(at(5, 1, 0))}, "c")

	report, err := f.sales.DailyReport(at(1, 0, 0), at(3, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if report.Total != 8000 || len(report.Days) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.ByAttribution["aoi@example.com"] != 3000 || report.ByAttribution[sales.CommonAttribution] != 5000 {
		t.Errorf("unexpected attribution totals: %v", report.ByAttribution)
	}
	if report.Days[1].Date != "2024-03-02" || report.Days[1].ByCategory["card"] != 5000 {
		t.Errorf("unexpected second day: %+v", report.Days[1])
	}

	if _, err := f.sales.DailyReport(at(3, 0, 0), at(1, 0, 0)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestSalesService_DeleteTransaction(t *testing.T) {
	f := setupTestSalesFixture()
	f.setNow(at(1, 20, 0))
	tx, _ := f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "cash", Amount: 100}, "c")

	if err := f.sales.DeleteTransaction(tx.ID, "owner"); err != nil {
		t.Fatal(err)
	}
	if err := f.sales.DeleteTransaction(uuid.New(), "owner"); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestRegisterService_OpenAndClose(t *testing.T) {
	f := setupTestSalesFixture()

	// rung up with no register open; its time falls inside the later session
	f.setNow(at(1, 16, 0))
	f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "cash", Amount: 999, OccurredAt: ptrTime(at(1, 18, 30))}, "c")

	f.setNow(at(1, 17, 0))
	session, err := f.register.Open(&OpenRegisterRequest{OpeningCash: 10000}, "owner@example.com")
	if err != nil {
		t.Fatalf("Open should succeed: %v", err)
	}
	if _, err := f.register.Open(&OpenRegisterRequest{OpeningCash: 0}, "owner@example.com"); !errors.Is(err, ErrRegisterAlreadyOpen) {
		t.Errorf("expected ErrRegisterAlreadyOpen, got %v", err)
	}

	f.setNow(at(1, 20, 0))
	cash, _ := f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "cash", Amount: 3000}, "c")
	f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "card", Amount: 5000}, "c")
	// back-dated before the opening time but recorded into the session
	f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "cash", Amount: 400, OccurredAt: ptrTime(at(1, 16, 50))}, "c")

	if cash.RegisterSessionID == nil || *cash.RegisterSessionID != session.ID {
		t.Errorf("expected sale linked to the open session")
	}

	f.setNow(at(2, 2, 0))
	f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "cash", Amount: 500}, "c")

	closed, err := f.register.Close(&CloseRegisterRequest{CountedCash: 13000}, "owner@example.com")
	if err != nil {
		t.Fatalf("Close should succeed: %v", err)
	}
	if closed.CashSales != 3900 || *closed.ExpectedCash != 13900 || *closed.Difference != -900 {
		t.Errorf("unexpected reconciliation: cash %d expected %d diff %d", closed.CashSales, *closed.ExpectedCash, *closed.Difference)
	}
	if closed.IsOpen() || closed.ClosedByEmail != "owner@example.com" {
		t.Errorf("expected closed session, got %+v", closed)
	}

	if _, err := f.register.Current(); !errors.Is(err, ErrRegisterNotOpen) {
		t.Errorf("expected ErrRegisterNotOpen, got %v", err)
	}
	if _, err := f.register.Close(&CloseRegisterRequest{CountedCash: 0}, "owner@example.com"); !errors.Is(err, ErrRegisterNotOpen) {
		t.Errorf("expected ErrRegisterNotOpen, got %v", err)
	}
}

func TestRegisterService_CloseCountsBackdatedSale(t *testing.T) {
	f := setupTestSalesFixture()

	f.setNow(at(1, 18, 0))
	session, _ := f.register.Open(&OpenRegisterRequest{OpeningCash: 10000}, "owner@example.com")

	f.setNow(at(1, 19, 0))
	tx, err := f.sales.RecordTransaction(&RecordTransactionRequest{PaymentMethod: "cash", Amount: 3000, OccurredAt: ptrTime(at(1, 17, 50))}, "c")
	if err != nil {
		t.Fatalf("RecordTransaction failed: %v", err)
	}
	if tx.RegisterSessionID == nil || *tx.RegisterSessionID != session.ID {
		t.Fatal("expected sale linked to the open session")
	}

	f.setNow(at(1, 23, 0))
	closed, err := f.register.Close(&CloseRegisterRequest{CountedCash: 13000}, "owner@example.com")
	if err != nil {
		t.Fatalf("Close should succeed: %v", err)
	}
	if closed.CashSales != 3000 || *closed.ExpectedCash != 13000 || *closed.Difference != 0 {
		t.Errorf("expected the linked sale counted, got cash %d expected %d diff %d",
			closed.CashSales, *closed.ExpectedCash, *closed.Difference)
	}
}

func TestRegisterService_RejectsNegativeCash(t *testing.T) {
	f := setupTestSalesFixture()
	f.setNow(at(1, 17, 0))

	if _, err := f.register.Open(&OpenRegisterRequest{OpeningCash: -1}, "owner@example.com"); err == nil {
		t.Error("expected validation error for negative opening cash")
	}
}
