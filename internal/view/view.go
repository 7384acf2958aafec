// Package view enumerates the portal's tabs and selects the slice of citizen
// data each one is given.
package view

import (
	"fmt"

	"github.com/sadopc/civic/internal/domain"
)

type View int

const (
	Dashboard View = iota
	Projects
	Transport
	Taxes
	Utilities
	Benefits
)

// Default is the view shown after login and logout.
const Default = Dashboard

var Names = []string{"Dashboard", "Projects", "Transport", "Taxes", "Utilities", "Benefits"}

func All() []View {
	return []View{Dashboard, Projects, Transport, Taxes, Utilities, Benefits}
}

func (v View) Valid() bool { return v >= Dashboard && v <= Benefits }

func (v View) String() string {
	if !v.Valid() {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return Names[v]
}

func (v View) Next() View { return (v + 1) % View(len(Names)) }
func (v View) Prev() View { return (v + View(len(Names)) - 1) % View(len(Names)) }

// Slice is the data a view receives. Fields a view does not need stay zero.
type Slice struct {
	View      View
	User      *domain.User
	Projects  []domain.Project
	Transport *domain.Transport
	Taxes     []domain.Tax
	Utilities []domain.Utility
	Benefits  []domain.Benefit

	// ProjectCount is set for the dashboard, which lists no projects itself.
	ProjectCount int
}

// Select returns the part of d that v renders. It copies what it hands out
// and never modifies d.
func Select(v View, d domain.UserData) Slice {
	d = d.Clone()
	s := Slice{View: v}
	switch v {
	case Dashboard:
		s.User = &d.User
		s.ProjectCount = len(d.Projects)
		s.Transport = &d.Transport
		s.Taxes = d.Taxes
		s.Utilities = d.Utilities
	case Projects:
		s.Projects = d.Projects
	case Transport:
		s.Transport = &d.Transport
	case Taxes:
		s.Taxes = d.Taxes
	case Utilities:
		s.Utilities = d.Utilities
	case Benefits:
		s.Benefits = d.Benefits
	}
	return s
}
