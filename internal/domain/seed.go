package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seed returns the mock dataset every session starts from. Each call builds a
// fresh value, so callers may keep it without copying.
func Seed() UserData {
	return UserData{
		User: User{
			Name:  "Elena",
			Email: "elena.popescu@email.com",
		},
		Projects: []Project{
			{
				ID:          1,
				Name:        "MetroFlor Line M1",
				Status:      ProjectInProgress,
				Progress:    70,
				Budget:      decimal.NewFromInt(150_000_000),
				Company:     "InfraConstruct SRL",
				EndDate:     date("2025-12-31"),
				Description: "Construction of a new 15km underground metro line to connect the city center with the northern districts.",
				Stakeholders: []string{
					"Florești City Hall",
					"Ministry of Transport",
					"European Investment Bank",
					"Local Businesses Association",
				},
				Milestones: []Milestone{
					{Name: "Planning Start", Date: date("2022-03-15"), Status: MilestoneCompleted},
					{Name: "Design Approval", Date: date("2023-01-20"), Status: MilestoneCompleted},
					{Name: "Construction", Date: date("2023-06-01"), Status: MilestoneCompleted},
					{Name: "Completion", Date: date("2025-12-31"), Status: MilestoneUpcoming},
				},
				ImageURL:    "https://storage.googleapis.com/aai-web-samples/metro-construction.jpeg",
				MapImageURL: "https://storage.googleapis.com/aai-web-samples/metro-map.jpeg",
				Coordinates: &Point{X: 50, Y: 55},
			},
			{
				ID:          2,
				Name:        "Răut Plaza Tower",
				Status:      ProjectApproved,
				Progress:    15,
				Budget:      decimal.NewFromInt(85_000_000),
				Company:     "UrbanDev Corp",
				EndDate:     date("2026-08-15"),
				Description: "A 25-story mixed-use skyscraper featuring commercial office spaces, luxury apartments, and a rooftop restaurant with panoramic city views.",
				Stakeholders: []string{
					"UrbanDev Corp Investors",
					"Florești Planning Commission",
					"Future Tenants Committee",
				},
				Milestones: []Milestone{
					{Name: "Planning", Date: date("2023-05-10"), Status: MilestoneCompleted},
					{Name: "Approval", Date: date("2024-02-28"), Status: MilestoneCompleted},
					{Name: "Construction", Date: date("2024-09-01"), Status: MilestoneUpcoming},
					{Name: "Completion", Date: date("2026-08-15"), Status: MilestoneUpcoming},
				},
				ImageURL:    "https://picsum.photos/seed/tower/600/400",
				Coordinates: &Point{X: 30, Y: 25},
			},
			{
				ID:          3,
				Name:        "Varvareuca IT Hub",
				Status:      ProjectPlanning,
				Progress:    5,
				Budget:      decimal.NewFromInt(120_000_000),
				Company:     "TechBuild Inc.",
				EndDate:     date("2027-01-20"),
				Description: "Developing a state-of-the-art technology park to attract international IT companies and foster local startups, creating an estimated 2,500 new jobs.",
				Stakeholders: []string{
					"Ministry of Economy and Digitalization",
					"TechBuild Inc.",
					"National Association of ICT Companies",
				},
				Milestones: []Milestone{
					{Name: "Feasibility", Date: date("2024-01-15"), Status: MilestoneCompleted},
					{Name: "Planning", Date: date("2025-02-01"), Status: MilestoneUpcoming},
					{Name: "Acquisition", Date: date("2025-08-01"), Status: MilestoneUpcoming},
					{Name: "Construction", Date: date("2026-03-01"), Status: MilestoneUpcoming},
				},
				ImageURL:    "https://picsum.photos/seed/hub/600/400",
				Coordinates: &Point{X: 80, Y: 75},
			},
			{
				ID:          4,
				Name:        "City Park Revitalization",
				Status:      ProjectCompleted,
				Progress:    100,
				Budget:      decimal.NewFromInt(5_000_000),
				Company:     "GreenScapes",
				EndDate:     date("2023-05-01"),
				Description: "Complete overhaul of the central city park, including new playgrounds, a modern irrigation system, a dedicated dog park, and restoration of historical monuments.",
				Stakeholders: []string{
					"Florești Parks Department",
					`Community Action Group "Green Florești"`,
					"Local Residents",
				},
				Milestones: []Milestone{
					{Name: "Consultation", Date: date("2022-09-01"), Status: MilestoneCompleted},
					{Name: "Design", Date: date("2022-11-15"), Status: MilestoneCompleted},
					{Name: "Renovation", Date: date("2023-01-10"), Status: MilestoneCompleted},
					{Name: "Inauguration", Date: date("2023-05-01"), Status: MilestoneCompleted},
				},
				ImageURL:    "https://picsum.photos/seed/park/600/400",
				Coordinates: &Point{X: 65, Y: 30},
			},
		},
		Transport: Transport{
			CardName: "Florești MetroCard",
			Balance:  decimal.RequireFromString("125.50"),
			Currency: "MDL",
		},
		Taxes: []Tax{
			{ID: 1, Name: "Property Tax", Amount: decimal.NewFromInt(890), DueDate: date("2024-06-30"), Status: TaxOverdue},
			{ID: 2, Name: "Business Tax", Amount: decimal.NewFromInt(1250), DueDate: date("2024-09-30"), Status: TaxDue},
		},
		Utilities: []Utility{
			{Name: Water, Usage: "23.5 m³", Change: 5, Status: UtilityDue, Amount: money("345.50"), DueDate: datePtr("2024-07-25")},
			{Name: Gas, Usage: "45.2 m³", Change: 12, Status: UtilityDue, Amount: money("780.20"), DueDate: datePtr("2024-07-25"), AutoPay: true},
			{Name: Electricity, Usage: "156 kWh", Change: -2, Status: UtilityPaid, Amount: money("450.00"), DueDate: datePtr("2024-06-25"), PaymentDate: datePtr("2024-06-24")},
			{Name: WasteCollection, Usage: "-", Change: 0, Status: UtilityOnSchedule},
		},
		Benefits: []Benefit{
			{
				ID:              1,
				Name:            "Pensioner Compensation",
				Status:          BenefitApproved,
				NextPaymentDate: "January 15",
				AnnualAmount:    decimal.NewFromInt(37560),
				Recipient:       "Elena's Mother",
			},
		},
	}
}

func date(s string) time.Time {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
