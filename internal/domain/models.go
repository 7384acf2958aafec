package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar format used for due and end dates.
const DateLayout = "2006-01-02"

// PaymentDateLayout renders payment dates as a local calendar day (DD/MM/YYYY).
const PaymentDateLayout = "02/01/2006"

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "Planning"
	ProjectApproved   ProjectStatus = "Approved"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
)

// ProjectStatuses lists every project status in filter order.
var ProjectStatuses = []ProjectStatus{ProjectInProgress, ProjectPlanning, ProjectApproved, ProjectCompleted}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectApproved, ProjectInProgress, ProjectCompleted:
		return true
	}
	return false
}

type MilestoneStatus string

const (
	MilestoneCompleted MilestoneStatus = "Completed"
	MilestoneUpcoming  MilestoneStatus = "Upcoming"
)

type TaxStatus string

const (
	TaxDue     TaxStatus = "Due"
	TaxPaid    TaxStatus = "Paid"
	TaxOverdue TaxStatus = "Overdue"
)

func (s TaxStatus) Valid() bool {
	switch s {
	case TaxDue, TaxPaid, TaxOverdue:
		return true
	}
	return false
}

// UtilityName is the closed set of utilities; it doubles as the utility key.
type UtilityName string

const (
	Water           UtilityName = "Water"
	Gas             UtilityName = "Gas"
	Electricity     UtilityName = "Electricity"
	WasteCollection UtilityName = "Waste Collection"
)

func (n UtilityName) Valid() bool {
	switch n {
	case Water, Gas, Electricity, WasteCollection:
		return true
	}
	return false
}

type UtilityStatus string

const (
	UtilityDue        UtilityStatus = "Due"
	UtilityPaid       UtilityStatus = "Paid"
	UtilityOnSchedule UtilityStatus = "On Schedule"
	UtilityDelayed    UtilityStatus = "Delayed"
)

type BenefitStatus string

const (
	BenefitApproved BenefitStatus = "Approved and Processed"
	BenefitPending  BenefitStatus = "Pending"
)

type User struct {
	Name  string
	Email string
}

type Milestone struct {
	Name   string
	Date   time.Time
	Status MilestoneStatus
}

// Point is a map position in percent of the map width and height.
type Point struct {
	X int
	Y int
}

type Project struct {
	ID           int64
	Name         string
	Status       ProjectStatus
	Progress     int // 0-100
	Budget       decimal.Decimal
	Company      string
	EndDate      time.Time
	Description  string
	Stakeholders []string
	Milestones   []Milestone // display order, not necessarily sorted by date
	ImageURL     string
	MapImageURL  string
	Coordinates  *Point
}

type Transport struct {
	CardName string
	Balance  decimal.Decimal
	Currency string
}

// Tax carries no stored overdue flag; Overdue derives it from Status.
type Tax struct {
	ID          int64
	Name        string
	Amount      decimal.Decimal
	DueDate     time.Time
	Status      TaxStatus
	PaymentDate *time.Time // set iff Status == TaxPaid
}

type Utility struct {
	Name        UtilityName
	Usage       string
	Change      int // percent vs. prior period
	Status      UtilityStatus
	Amount      *decimal.Decimal // nil for non-billable utilities
	DueDate     *time.Time       // nil iff Amount is nil
	AutoPay     bool
	PaymentDate *time.Time
}

type Benefit struct {
	ID              int64
	Name            string
	Status          BenefitStatus
	NextPaymentDate string
	AnnualAmount    decimal.Decimal
	Recipient       string // free text, not a reference to a modeled person
}

// UserData is the aggregate owned by the domain store.
type UserData struct {
	User      User
	Projects  []Project
	Transport Transport
	Taxes     []Tax
	Utilities []Utility
	Benefits  []Benefit
}
