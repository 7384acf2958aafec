package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Clone returns a deep copy so that readers never share memory with the store.
func (d UserData) Clone() UserData {
	out := d
	out.Projects = make([]Project, len(d.Projects))
	for i, p := range d.Projects {
		p.Stakeholders = append([]string(nil), p.Stakeholders...)
		p.Milestones = append([]Milestone(nil), p.Milestones...)
		if p.Coordinates != nil {
			c := *p.Coordinates
			p.Coordinates = &c
		}
		out.Projects[i] = p
	}
	out.Taxes = make([]Tax, len(d.Taxes))
	for i, t := range d.Taxes {
		t.PaymentDate = cloneTime(t.PaymentDate)
		out.Taxes[i] = t
	}
	out.Utilities = make([]Utility, len(d.Utilities))
	for i, u := range d.Utilities {
		if u.Amount != nil {
			a := *u.Amount
			u.Amount = &a
		}
		u.DueDate = cloneTime(u.DueDate)
		u.PaymentDate = cloneTime(u.PaymentDate)
		out.Utilities[i] = u
	}
	out.Benefits = append([]Benefit(nil), d.Benefits...)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Validate checks the aggregate invariants and reports every violation found.
func (d UserData) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
	}

	projectIDs := make(map[int64]bool)
	for _, p := range d.Projects {
		if projectIDs[p.ID] {
			fail("duplicate project id %d", p.ID)
		}
		projectIDs[p.ID] = true
		if !p.Status.Valid() {
			fail("project %d: unknown status %q", p.ID, p.Status)
		}
		if p.Progress < 0 || p.Progress > 100 {
			fail("project %d: progress %d out of range", p.ID, p.Progress)
		}
	}

	if d.Transport.Balance.LessThan(decimal.Zero) {
		fail("transport balance %s is negative", d.Transport.Balance)
	}

	taxIDs := make(map[int64]bool)
	for _, t := range d.Taxes {
		if taxIDs[t.ID] {
			fail("duplicate tax id %d", t.ID)
		}
		taxIDs[t.ID] = true
		if !t.Status.Valid() {
			fail("tax %d: unknown status %q", t.ID, t.Status)
		}
		if (t.Status == TaxPaid) != (t.PaymentDate != nil) {
			fail("tax %d: status %s inconsistent with payment date", t.ID, t.Status)
		}
	}

	names := make(map[UtilityName]bool)
	for _, u := range d.Utilities {
		if !u.Name.Valid() {
			fail("unknown utility %q", u.Name)
		}
		if names[u.Name] {
			fail("duplicate utility %q", u.Name)
		}
		names[u.Name] = true
		if (u.Amount == nil) != (u.DueDate == nil) {
			fail("utility %s: amount and due date must both be set or both be empty", u.Name)
		}
		if !u.Billable() && (u.Status == UtilityDue || u.Status == UtilityPaid) {
			fail("utility %s: non-billable utility in status %s", u.Name, u.Status)
		}
	}

	benefitIDs := make(map[int64]bool)
	for _, b := range d.Benefits {
		if benefitIDs[b.ID] {
			fail("duplicate benefit id %d", b.ID)
		}
		benefitIDs[b.ID] = true
	}

	return errors.Join(errs...)
}
