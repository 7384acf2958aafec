package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// ============================================================
// Seed
// ============================================================

func TestSeedIsValid(t *testing.T) {
	if err := Seed().Validate(); err != nil {
		t.Fatalf("seed violates invariants: %v", err)
	}
}

func TestSeedShape(t *testing.T) {
	d := Seed()
	if d.User.Name != "Elena" {
		t.Fatalf("user = %q", d.User.Name)
	}
	if len(d.Projects) != 4 || len(d.Taxes) != 2 || len(d.Utilities) != 4 || len(d.Benefits) != 1 {
		t.Fatalf("unexpected seed sizes: %d projects, %d taxes, %d utilities, %d benefits",
			len(d.Projects), len(d.Taxes), len(d.Utilities), len(d.Benefits))
	}
	if !d.Transport.Balance.Equal(decimal.RequireFromString("125.50")) {
		t.Fatalf("balance = %s", d.Transport.Balance)
	}
	if d.Transport.Currency != "MDL" {
		t.Fatalf("currency = %s", d.Transport.Currency)
	}
	waste, ok := d.FindUtility(WasteCollection)
	if !ok || waste.Billable() {
		t.Fatal("waste collection should exist and be non-billable")
	}
}

func TestSeedReturnsFreshValue(t *testing.T) {
	a := Seed()
	a.Taxes[0].Status = TaxPaid
	a.Projects[0].Stakeholders[0] = "changed"

	b := Seed()
	if b.Taxes[0].Status != TaxOverdue {
		t.Fatal("seed should not share tax slices between calls")
	}
	if b.Projects[0].Stakeholders[0] == "changed" {
		t.Fatal("seed should not share stakeholder slices between calls")
	}
}

// ============================================================
// Clone
// ============================================================

func TestCloneIsDeep(t *testing.T) {
	orig := Seed()
	c := orig.Clone()

	if diff := cmp.Diff(orig, c); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	now := time.Now()
	c.Taxes[0].PaymentDate = &now
	*c.Utilities[0].Amount = decimal.NewFromInt(1)
	c.Projects[0].Coordinates.X = 99
	c.Projects[0].Milestones[0].Name = "x"
	c.Benefits[0].Name = "x"

	if orig.Taxes[0].PaymentDate != nil {
		t.Fatal("tax payment date shared")
	}
	if orig.Utilities[0].Amount.Equal(decimal.NewFromInt(1)) {
		t.Fatal("utility amount shared")
	}
	if orig.Projects[0].Coordinates.X == 99 {
		t.Fatal("coordinates shared")
	}
	if orig.Projects[0].Milestones[0].Name == "x" {
		t.Fatal("milestones shared")
	}
	if orig.Benefits[0].Name == "x" {
		t.Fatal("benefits shared")
	}
}

// ============================================================
// Validate
// ============================================================

func TestValidateUtilityAmountDueDate(t *testing.T) {
	d := Seed()
	d.Utilities[0].DueDate = nil
	err := d.Validate()
	if !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

func TestValidateNonBillablePaid(t *testing.T) {
	d := Seed()
	for i := range d.Utilities {
		if d.Utilities[i].Name == WasteCollection {
			d.Utilities[i].Status = UtilityPaid
		}
	}
	if err := d.Validate(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

func TestValidateTaxPaidNeedsDate(t *testing.T) {
	d := Seed()
	d.Taxes[0].Status = TaxPaid
	if err := d.Validate(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}

	d = Seed()
	now := time.Now()
	d.Taxes[1].PaymentDate = &now
	if err := d.Validate(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("payment date on unpaid tax should fail, got %v", err)
	}
}

func TestValidateDuplicatesAndRanges(t *testing.T) {
	d := Seed()
	d.Taxes[1].ID = d.Taxes[0].ID
	d.Projects[0].Progress = 101
	d.Transport.Balance = decimal.NewFromInt(-1)
	d.Utilities[1].Name = Water

	err := d.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"duplicate tax id", "progress 101", "negative", "duplicate utility"} {
		if !contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

// ============================================================
// Queries
// ============================================================

func TestTaxDerivedFlags(t *testing.T) {
	d := Seed()
	property, _ := d.FindTax(1)
	business, _ := d.FindTax(2)

	if !property.Overdue() {
		t.Fatal("property tax should be overdue")
	}
	if business.Overdue() {
		t.Fatal("business tax should not be overdue")
	}
	if !business.PastDue(date("2024-10-01")) {
		t.Fatal("business tax should be past due after its due date")
	}
	if business.PastDue(date("2024-09-30")) {
		t.Fatal("business tax is not past due on its due date")
	}
	if _, ok := d.FindTax(42); ok {
		t.Fatal("unknown tax should not be found")
	}
}

func TestPayableTaxesAndSums(t *testing.T) {
	d := Seed()
	payable := PayableTaxes(d.Taxes)
	if len(payable) != 2 {
		t.Fatalf("payable = %d, want 2", len(payable))
	}
	if !SumTaxes(payable).Equal(decimal.NewFromInt(2140)) {
		t.Fatalf("sum = %s, want 2140", SumTaxes(payable))
	}
	sel := SumSelected(d.Taxes, map[int64]bool{2: true})
	if !sel.Equal(decimal.NewFromInt(1250)) {
		t.Fatalf("selected = %s, want 1250", sel)
	}

	next, ok := NextPayableTax(d.Taxes)
	if !ok || next.ID != 1 {
		t.Fatalf("next payable = %+v", next)
	}

	now := time.Now()
	for i := range d.Taxes {
		d.Taxes[i].Status = TaxPaid
		d.Taxes[i].PaymentDate = &now
	}
	if _, ok := NextPayableTax(d.Taxes); ok {
		t.Fatal("no tax should be payable")
	}
	if !SumTaxes(PayableTaxes(d.Taxes)).IsZero() {
		t.Fatal("payable total should be zero")
	}
}

func TestFilterProjects(t *testing.T) {
	d := Seed()
	if got := FilterProjects(d.Projects, ""); len(got) != 4 {
		t.Fatalf("all = %d", len(got))
	}
	got := FilterProjects(d.Projects, ProjectCompleted)
	if len(got) != 1 || got[0].ID != 4 {
		t.Fatalf("completed = %+v", got)
	}
}

func TestRelatedProjects(t *testing.T) {
	projects := []Project{
		{ID: 1, Company: "A"},
		{ID: 2, Company: "A"},
		{ID: 3, Company: "B"},
		{ID: 4, Company: "A"},
		{ID: 5, Company: "A"},
	}
	got := RelatedProjects(projects, projects[0])
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 4 {
		t.Fatalf("related = %+v", got)
	}
	if got := RelatedProjects(projects, projects[2]); len(got) != 0 {
		t.Fatalf("B has no related projects, got %+v", got)
	}
}

func TestProjectOverdue(t *testing.T) {
	d := Seed()
	metro, _ := d.FindProject(1)
	park, _ := d.FindProject(4)
	after := date("2026-01-01")
	if !metro.Overdue(after) {
		t.Fatal("metro line should be overdue after its end date")
	}
	if metro.Overdue(date("2025-01-01")) {
		t.Fatal("metro line should not be overdue before its end date")
	}
	if park.Overdue(after) {
		t.Fatal("completed projects are never overdue")
	}
}

func TestMilestoneProgress(t *testing.T) {
	d := Seed()
	tests := []struct {
		id   int64
		want float64
	}{
		{1, 2.0 / 3.0},
		{3, 0},
		{4, 1},
	}
	for _, tt := range tests {
		p, _ := d.FindProject(tt.id)
		if got := p.MilestoneProgress(); got != tt.want {
			t.Fatalf("project %d progress = %v, want %v", tt.id, got, tt.want)
		}
	}
	if got := (Project{Milestones: []Milestone{{Status: MilestoneCompleted}}}).MilestoneProgress(); got != 0 {
		t.Fatalf("single milestone progress = %v", got)
	}
}

func TestUsageChangesAndPaidUtilities(t *testing.T) {
	d := Seed()
	changes := UsageChanges(d.Utilities)
	if len(changes) != 3 {
		t.Fatalf("changes = %+v", changes)
	}
	for _, c := range changes {
		if c.Name == WasteCollection {
			t.Fatal("waste collection is on schedule and should be excluded")
		}
	}
	paid := PaidUtilities(d.Utilities)
	if len(paid) != 1 || paid[0].Name != Electricity {
		t.Fatalf("paid = %+v", paid)
	}
}

func TestUtilityPayable(t *testing.T) {
	d := Seed()
	water, _ := d.FindUtility(Water)
	elec, _ := d.FindUtility(Electricity)
	waste, _ := d.FindUtility(WasteCollection)
	if !water.Payable() || elec.Payable() || waste.Payable() {
		t.Fatal("only water should be payable in the seed")
	}
}

func TestEnumValid(t *testing.T) {
	if !ProjectInProgress.Valid() || ProjectStatus("x").Valid() {
		t.Fatal("project status validity")
	}
	if !TaxOverdue.Valid() || TaxStatus("x").Valid() {
		t.Fatal("tax status validity")
	}
	if !WasteCollection.Valid() || UtilityName("Internet").Valid() {
		t.Fatal("utility name validity")
	}
}

func TestDay(t *testing.T) {
	in := time.Date(2024, 7, 25, 18, 30, 0, 0, time.UTC)
	want := time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)
	if got := Day(in); !got.Equal(want) {
		t.Fatalf("Day = %v, want %v", got, want)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
