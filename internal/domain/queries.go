package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Day truncates t to midnight of its calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Overdue reports whether the tax is in the Overdue status.
func (t Tax) Overdue() bool {
	return t.Status == TaxOverdue
}

// Payable reports whether the tax can still be selected for payment.
func (t Tax) Payable() bool {
	return t.Status != TaxPaid
}

// PastDue reports an unpaid tax whose due date lies before now's calendar day.
func (t Tax) PastDue(now time.Time) bool {
	return t.Payable() && t.DueDate.Before(Day(now))
}

// Billable reports whether the utility issues bills at all.
func (u Utility) Billable() bool {
	return u.Amount != nil
}

// Payable reports whether a bill is outstanding for manual payment.
func (u Utility) Payable() bool {
	return u.Billable() && u.Status == UtilityDue
}

// Overdue reports whether the project is past its end date without being completed.
func (p Project) Overdue(now time.Time) bool {
	return p.Status != ProjectCompleted && p.EndDate.Before(now)
}

// MilestoneProgress returns the fraction (0..1) of the timeline up to the last
// completed milestone.
func (p Project) MilestoneProgress() float64 {
	if len(p.Milestones) < 2 {
		return 0
	}
	last := -1
	for i, m := range p.Milestones {
		if m.Status == MilestoneCompleted {
			last = i
		}
	}
	if last < 0 {
		return 0
	}
	return float64(last) / float64(len(p.Milestones)-1)
}

func (d UserData) FindTax(id int64) (Tax, bool) {
	for _, t := range d.Taxes {
		if t.ID == id {
			return t, true
		}
	}
	return Tax{}, false
}

func (d UserData) FindUtility(name UtilityName) (Utility, bool) {
	for _, u := range d.Utilities {
		if u.Name == name {
			return u, true
		}
	}
	return Utility{}, false
}

func (d UserData) FindProject(id int64) (Project, bool) {
	for _, p := range d.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// PayableTaxes returns the taxes that are not yet paid, in list order.
func PayableTaxes(taxes []Tax) []Tax {
	var out []Tax
	for _, t := range taxes {
		if t.Payable() {
			out = append(out, t)
		}
	}
	return out
}

// NextPayableTax returns the first unpaid tax in list order.
func NextPayableTax(taxes []Tax) (Tax, bool) {
	for _, t := range taxes {
		if t.Payable() {
			return t, true
		}
	}
	return Tax{}, false
}

// SumTaxes totals the amounts of the given taxes.
func SumTaxes(taxes []Tax) decimal.Decimal {
	total := decimal.Zero
	for _, t := range taxes {
		total = total.Add(t.Amount)
	}
	return total
}

// SumSelected totals the taxes whose ids appear in selected.
func SumSelected(taxes []Tax, selected map[int64]bool) decimal.Decimal {
	total := decimal.Zero
	for _, t := range taxes {
		if selected[t.ID] {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// FilterProjects keeps the projects with the given status; an empty status keeps all.
func FilterProjects(projects []Project, status ProjectStatus) []Project {
	if status == "" {
		return projects
	}
	var out []Project
	for _, p := range projects {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// RelatedProjects returns up to two other projects run by the same company.
func RelatedProjects(all []Project, p Project) []Project {
	var out []Project
	for _, other := range all {
		if other.ID == p.ID || other.Company != p.Company {
			continue
		}
		out = append(out, other)
		if len(out) == 2 {
			break
		}
	}
	return out
}

// UsageChange is one bar of the usage comparison chart.
type UsageChange struct {
	Name   UtilityName
	Change int
}

// UsageChanges lists the period-over-period change of every metered utility.
func UsageChanges(utilities []Utility) []UsageChange {
	var out []UsageChange
	for _, u := range utilities {
		if u.Status == UtilityOnSchedule || u.Status == UtilityDelayed {
			continue
		}
		out = append(out, UsageChange{Name: u.Name, Change: u.Change})
	}
	return out
}

// PaidUtilities returns the billable utilities paid this cycle.
func PaidUtilities(utilities []Utility) []Utility {
	var out []Utility
	for _, u := range utilities {
		if u.Status == UtilityPaid && u.Billable() {
			out = append(out, u)
		}
	}
	return out
}
