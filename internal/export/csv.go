package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sadopc/civic/internal/domain"
)

var csvHeader = []string{"Section", "Item", "Amount", "Currency", "Due", "Status", "Paid On", "Auto-Pay"}

// WriteCSV writes one row per chargeable item in d.
func WriteCSV(w io.Writer, d domain.UserData) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range statementRows(d) {
		if err := cw.Write(r); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ToCSV(d domain.UserData, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, d)
}

func statementRows(d domain.UserData) [][]string {
	var rows [][]string

	t := d.Transport
	rows = append(rows, []string{"Transport", t.CardName, t.Balance.StringFixed(2), t.Currency, "", "Balance", "", ""})

	for _, tax := range d.Taxes {
		rows = append(rows, []string{
			"Tax",
			tax.Name,
			tax.Amount.StringFixed(2),
			Currency,
			tax.DueDate.Format(domain.DateLayout),
			string(tax.Status),
			formatPaid(tax.PaymentDate),
			"",
		})
	}

	for _, u := range d.Utilities {
		amount, due := "", ""
		if u.Billable() {
			amount = u.Amount.StringFixed(2)
			due = u.DueDate.Format(domain.DateLayout)
		}
		rows = append(rows, []string{
			"Utility",
			string(u.Name),
			amount,
			Currency,
			due,
			string(u.Status),
			formatPaid(u.PaymentDate),
			strconv.FormatBool(u.AutoPay),
		})
	}

	for _, b := range d.Benefits {
		rows = append(rows, []string{"Benefit", b.Name, b.AnnualAmount.StringFixed(2), Currency, b.NextPaymentDate, string(b.Status), "", ""})
	}
	return rows
}
