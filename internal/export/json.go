package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/civic/internal/domain"
	"github.com/shopspring/decimal"
)

type jsonStatement struct {
	ExportedAt string          `json:"exported_at"`
	Citizen    string          `json:"citizen"`
	Email      string          `json:"email"`
	Transport  jsonTransport   `json:"transport"`
	Taxes      []jsonTax       `json:"taxes"`
	TaxesDue   decimal.Decimal `json:"taxes_due"`
	Utilities  []jsonUtility   `json:"utilities"`
	Benefits   []jsonBenefit   `json:"benefits"`
}

type jsonTransport struct {
	Card     string          `json:"card"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

type jsonTax struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"`
	Status      string          `json:"status"`
	Overdue     bool            `json:"overdue"`
	PaymentDate string          `json:"payment_date,omitempty"`
}

type jsonUtility struct {
	Name        string           `json:"name"`
	Usage       string           `json:"usage"`
	Change      int              `json:"change_percent"`
	Status      string           `json:"status"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	DueDate     string           `json:"due_date,omitempty"`
	AutoPay     bool             `json:"auto_pay"`
	PaymentDate string           `json:"payment_date,omitempty"`
}

type jsonBenefit struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Status          string          `json:"status"`
	NextPaymentDate string          `json:"next_payment_date"`
	AnnualAmount    decimal.Decimal `json:"annual_amount"`
	Recipient       string          `json:"recipient"`
}

// WriteJSON writes d as an indented statement stamped with now.
func WriteJSON(w io.Writer, d domain.UserData, now time.Time) error {
	st := jsonStatement{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Citizen:    d.User.Name,
		Email:      d.User.Email,
		Transport: jsonTransport{
			Card:     d.Transport.CardName,
			Balance:  d.Transport.Balance,
			Currency: d.Transport.Currency,
		},
		TaxesDue:  domain.SumTaxes(domain.PayableTaxes(d.Taxes)),
		Taxes:     []jsonTax{},
		Utilities: []jsonUtility{},
		Benefits:  []jsonBenefit{},
	}

	for _, t := range d.Taxes {
		st.Taxes = append(st.Taxes, jsonTax{
			ID:          t.ID,
			Name:        t.Name,
			Amount:      t.Amount,
			DueDate:     t.DueDate.Format(domain.DateLayout),
			Status:      string(t.Status),
			Overdue:     t.Overdue(),
			PaymentDate: formatPaid(t.PaymentDate),
		})
	}
	for _, u := range d.Utilities {
		ju := jsonUtility{
			Name:        string(u.Name),
			Usage:       u.Usage,
			Change:      u.Change,
			Status:      string(u.Status),
			Amount:      u.Amount,
			AutoPay:     u.AutoPay,
			PaymentDate: formatPaid(u.PaymentDate),
		}
		if u.DueDate != nil {
			ju.DueDate = u.DueDate.Format(domain.DateLayout)
		}
		st.Utilities = append(st.Utilities, ju)
	}
	for _, b := range d.Benefits {
		st.Benefits = append(st.Benefits, jsonBenefit{
			ID:              b.ID,
			Name:            b.Name,
			Status:          string(b.Status),
			NextPaymentDate: b.NextPaymentDate,
			AnnualAmount:    b.AnnualAmount,
			Recipient:       b.Recipient,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return nil
}

func ToJSON(d domain.UserData, path string, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, d, now)
}
