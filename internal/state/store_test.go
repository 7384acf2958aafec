package state

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sadopc/civic/internal/clock"
	"github.com/sadopc/civic/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/goleak"
)

var testNow = time.Date(2024, 7, 20, 14, 30, 0, 0, time.Local)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(domain.Seed, clock.Instant{T: testNow}, nil)
}

func today() string {
	return testNow.Format(domain.PaymentDateLayout)
}

func mustTax(t *testing.T, d domain.UserData, id int64) domain.Tax {
	t.Helper()
	tax, ok := d.FindTax(id)
	if !ok {
		t.Fatalf("tax %d not found", id)
	}
	return tax
}

func mustUtility(t *testing.T, d domain.UserData, name domain.UtilityName) domain.Utility {
	t.Helper()
	u, ok := d.FindUtility(name)
	if !ok {
		t.Fatalf("utility %s not found", name)
	}
	return u
}

func assertUtilityInvariant(t *testing.T, d domain.UserData) {
	t.Helper()
	for _, u := range d.Utilities {
		if (u.Amount == nil) != (u.DueDate == nil) {
			t.Fatalf("utility %s: amount/due date invariant broken", u.Name)
		}
	}
}

// ============================================================
// Snapshot & reset
// ============================================================

func TestSnapshotIsIsolated(t *testing.T) {
	s := newTestStore(t)
	snap := s.Snapshot()
	snap.Transport.Balance = decimal.NewFromInt(0)
	snap.Taxes[0].Status = domain.TaxPaid

	again := s.Snapshot()
	if !again.Transport.Balance.Equal(decimal.RequireFromString("125.50")) {
		t.Fatal("snapshot mutation leaked into the store")
	}
	if again.Taxes[0].Status != domain.TaxOverdue {
		t.Fatal("snapshot tax mutation leaked into the store")
	}
}

func TestResetRestoresSeed(t *testing.T) {
	s := newTestStore(t)
	s.TopUp(decimal.NewFromInt(100))
	s.PayTaxes(1, 2)
	s.PayUtility(domain.Water)
	s.ToggleAutoPay(domain.Gas)

	s.Reset()
	if diff := cmp.Diff(domain.Seed(), s.Snapshot()); diff != "" {
		t.Fatalf("reset did not restore seed (-seed +got):\n%s", diff)
	}
}

// ============================================================
// TopUp
// ============================================================

func TestTopUpScenario(t *testing.T) {
	s := newTestStore(t)
	if err := s.TopUp(decimal.NewFromInt(100)); err != nil {
		t.Fatal(err)
	}
	tr := s.Snapshot().Transport
	if !tr.Balance.Equal(decimal.RequireFromString("225.50")) {
		t.Fatalf("balance = %s, want 225.50", tr.Balance)
	}
	if tr.Currency != "MDL" {
		t.Fatalf("currency = %s, want MDL", tr.Currency)
	}
}

func TestTopUpIsAdditive(t *testing.T) {
	s := newTestStore(t)
	s.TopUp(decimal.NewFromInt(50))
	s.TopUp(decimal.RequireFromString("0.25"))
	got := s.Snapshot().Transport.Balance
	if !got.Equal(decimal.RequireFromString("175.75")) {
		t.Fatalf("balance = %s, want 175.75", got)
	}
}

func TestTopUpAcceptsArbitraryPositiveAmounts(t *testing.T) {
	s := newTestStore(t)
	for _, a := range []string{"0.01", "3.33", "1000000"} {
		before := s.Snapshot().Transport.Balance
		if err := s.TopUp(decimal.RequireFromString(a)); err != nil {
			t.Fatalf("top up %s: %v", a, err)
		}
		after := s.Snapshot().Transport.Balance
		if !after.Sub(before).Equal(decimal.RequireFromString(a)) {
			t.Fatalf("top up %s changed balance by %s", a, after.Sub(before))
		}
	}
}

func TestTopUpRejectsNonPositive(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot()
	for _, a := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		if err := s.TopUp(a); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("top up %s: expected ErrInvalidAmount, got %v", a, err)
		}
	}
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Fatalf("rejected top up changed state:\n%s", diff)
	}
}

func TestTopUpOnlyTouchesBalance(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot()
	s.TopUp(decimal.NewFromInt(200))
	after := s.Snapshot()
	if diff := cmp.Diff(before, after, cmpopts.IgnoreFields(domain.Transport{}, "Balance")); diff != "" {
		t.Fatalf("top up changed more than the balance:\n%s", diff)
	}
}

// ============================================================
// PayTaxes
// ============================================================

func TestPayTaxesScenario(t *testing.T) {
	s := newTestStore(t)
	paid := s.PayTaxes(1, 2)
	if len(paid) != 2 {
		t.Fatalf("paid = %v, want both taxes", paid)
	}

	d := s.Snapshot()
	for _, id := range []int64{1, 2} {
		tax := mustTax(t, d, id)
		if tax.Status != domain.TaxPaid {
			t.Fatalf("tax %d status = %s", id, tax.Status)
		}
		if tax.Overdue() {
			t.Fatalf("tax %d still overdue", id)
		}
		if tax.PaymentDate == nil || tax.PaymentDate.Format(domain.PaymentDateLayout) != today() {
			t.Fatalf("tax %d payment date = %v, want %s", id, tax.PaymentDate, today())
		}
	}
	if total := domain.SumTaxes(domain.PayableTaxes(d.Taxes)); !total.IsZero() {
		t.Fatalf("payable total = %s, want 0", total)
	}
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestPayTaxesLeavesOthersUntouched(t *testing.T) {
	s := newTestStore(t)
	before := mustTax(t, s.Snapshot(), 2)
	s.PayTaxes(1)
	after := mustTax(t, s.Snapshot(), 2)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("unselected tax changed:\n%s", diff)
	}
}

func TestPayTaxesIdempotent(t *testing.T) {
	s := newTestStore(t)
	s.PayTaxes(1)
	first := s.Snapshot()

	if paid := s.PayTaxes(1); len(paid) != 0 {
		t.Fatalf("second payment reported %v", paid)
	}
	if diff := cmp.Diff(first, s.Snapshot()); diff != "" {
		t.Fatalf("repeat payment changed state:\n%s", diff)
	}
}

func TestPayTaxesIgnoresUnknownIDs(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot()
	if paid := s.PayTaxes(42, 99); paid != nil {
		t.Fatalf("paid = %v, want none", paid)
	}
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Fatalf("unknown ids changed state:\n%s", diff)
	}

	paid := s.PayTaxes(42, 2)
	if len(paid) != 1 || paid[0] != 2 {
		t.Fatalf("paid = %v, want [2]", paid)
	}
}

func TestPayTaxesEmpty(t *testing.T) {
	s := newTestStore(t)
	if paid := s.PayTaxes(); paid != nil {
		t.Fatalf("paid = %v", paid)
	}
}

// ============================================================
// PayUtility
// ============================================================

func TestPayUtilityScenario(t *testing.T) {
	s := newTestStore(t)
	if err := s.PayUtility(domain.Water); err != nil {
		t.Fatal(err)
	}
	w := mustUtility(t, s.Snapshot(), domain.Water)
	if w.Status != domain.UtilityPaid {
		t.Fatalf("status = %s", w.Status)
	}
	if w.PaymentDate == nil || w.PaymentDate.Format(domain.PaymentDateLayout) != today() {
		t.Fatalf("payment date = %v", w.PaymentDate)
	}
	if !w.Amount.Equal(decimal.RequireFromString("345.50")) {
		t.Fatalf("amount = %s, want 345.50", w.Amount)
	}
	assertUtilityInvariant(t, s.Snapshot())
}

func TestPayUtilityNonBillableUnchanged(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot()
	err := s.PayUtility(domain.WasteCollection)
	if !errors.Is(err, domain.ErrNotBillable) {
		t.Fatalf("expected ErrNotBillable, got %v", err)
	}
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Fatalf("non-billable payment changed state:\n%s", diff)
	}
	assertUtilityInvariant(t, s.Snapshot())
}

func TestPayUtilityUnknown(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot()
	if err := s.PayUtility("Internet"); !errors.Is(err, domain.ErrUtilityNotFound) {
		t.Fatalf("expected ErrUtilityNotFound, got %v", err)
	}
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Fatalf("unknown utility changed state:\n%s", diff)
	}
}

func TestPayUtilityAlreadyPaid(t *testing.T) {
	s := newTestStore(t)
	before := mustUtility(t, s.Snapshot(), domain.Electricity)
	if err := s.PayUtility(domain.Electricity); err != nil {
		t.Fatal(err)
	}
	after := mustUtility(t, s.Snapshot(), domain.Electricity)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("paying a paid utility changed it:\n%s", diff)
	}
}

// ============================================================
// ToggleAutoPay
// ============================================================

func TestToggleAutoPayScenario(t *testing.T) {
	s := newTestStore(t)
	orig := mustUtility(t, s.Snapshot(), domain.Gas)

	on, err := s.ToggleAutoPay(domain.Gas)
	if err != nil {
		t.Fatal(err)
	}
	if on {
		t.Fatal("first toggle should disable auto-pay")
	}
	first := mustUtility(t, s.Snapshot(), domain.Gas)
	if first.AutoPay {
		t.Fatal("auto-pay should be off")
	}
	if diff := cmp.Diff(orig, first, cmpopts.IgnoreFields(domain.Utility{}, "AutoPay")); diff != "" {
		t.Fatalf("toggle changed more than auto-pay:\n%s", diff)
	}

	on, _ = s.ToggleAutoPay(domain.Gas)
	if !on {
		t.Fatal("second toggle should enable auto-pay")
	}
	if diff := cmp.Diff(orig, mustUtility(t, s.Snapshot(), domain.Gas)); diff != "" {
		t.Fatalf("double toggle should restore the original:\n%s", diff)
	}
}

func TestToggleAutoPayOnlyNamedUtility(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot()
	s.ToggleAutoPay(domain.Water)
	after := s.Snapshot()
	for i := range before.Utilities {
		if before.Utilities[i].Name == domain.Water {
			continue
		}
		if diff := cmp.Diff(before.Utilities[i], after.Utilities[i]); diff != "" {
			t.Fatalf("%s changed:\n%s", before.Utilities[i].Name, diff)
		}
	}
}

func TestToggleAutoPayUnknown(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ToggleAutoPay("Internet"); !errors.Is(err, domain.ErrUtilityNotFound) {
		t.Fatalf("expected ErrUtilityNotFound, got %v", err)
	}
}

func TestInvariantsHoldAfterEveryOperation(t *testing.T) {
	s := newTestStore(t)
	ops := []func(){
		func() { s.TopUp(decimal.NewFromInt(10)) },
		func() { s.PayTaxes(1) },
		func() { s.PayUtility(domain.Water) },
		func() { s.PayUtility(domain.WasteCollection) },
		func() { s.ToggleAutoPay(domain.WasteCollection) },
		func() { s.PayTaxes(1, 2, 3) },
		func() { s.PayUtility(domain.Gas) },
	}
	for i, op := range ops {
		op()
		d := s.Snapshot()
		if err := d.Validate(); err != nil {
			t.Fatalf("after op %d: %v", i, err)
		}
		assertUtilityInvariant(t, d)
	}
}

// ============================================================
// Subscriptions
// ============================================================

func TestSubscribeReceivesChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestStore(t)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.TopUp(decimal.NewFromInt(100))
	got := <-ch
	if !got.Transport.Balance.Equal(decimal.RequireFromString("225.50")) {
		t.Fatalf("published balance = %s", got.Transport.Balance)
	}
}

func TestSubscribeLatestWins(t *testing.T) {
	s := newTestStore(t)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.TopUp(decimal.NewFromInt(1))
	s.TopUp(decimal.NewFromInt(2))
	s.TopUp(decimal.NewFromInt(3))

	got := <-ch
	if !got.Transport.Balance.Equal(decimal.RequireFromString("131.50")) {
		t.Fatalf("subscriber should see the latest snapshot, got %s", got.Transport.Balance)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot %s", extra.Transport.Balance)
	default:
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	s := newTestStore(t)
	ch, cancel := s.Subscribe()
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
	// Publishing after cancel must not panic.
	s.TopUp(decimal.NewFromInt(1))
}

func TestNoPublishOnNoop(t *testing.T) {
	s := newTestStore(t)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.PayTaxes(42)
	s.PayUtility(domain.WasteCollection)
	select {
	case <-ch:
		t.Fatal("no-op operations should not publish")
	default:
	}
}

func TestStoreSatisfiesOperations(t *testing.T) {
	var ops Operations = newTestStore(t)
	if len(ops.Snapshot().Taxes) != 2 {
		t.Fatal("operations snapshot should expose taxes")
	}
}

// ============================================================
// Epochs
// ============================================================

func TestWithinRunsInCurrentEpoch(t *testing.T) {
	s := newTestStore(t)
	epoch := s.Epoch()
	err := s.Within(epoch, func() error { return s.TopUp(decimal.NewFromInt(10)) })
	if err != nil {
		t.Fatal(err)
	}
	if !s.Snapshot().Transport.Balance.Equal(decimal.RequireFromString("135.50")) {
		t.Fatal("commit in the current epoch should apply")
	}
}

func TestWithinRefusesAfterReset(t *testing.T) {
	s := newTestStore(t)
	epoch := s.Epoch()
	s.Reset()
	if s.Epoch() == epoch {
		t.Fatal("reset should start a new epoch")
	}

	called := false
	err := s.Within(epoch, func() error {
		called = true
		return s.TopUp(decimal.NewFromInt(100))
	})
	if !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if called {
		t.Fatal("stale commit should not run")
	}
	if diff := cmp.Diff(domain.Seed(), s.Snapshot()); diff != "" {
		t.Fatalf("stale commit changed the seed:\n%s", diff)
	}
}
