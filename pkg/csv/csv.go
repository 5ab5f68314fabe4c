package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/mkoval/monoynab/pkg/models"
)

type FilterFunc func(models.Transaction) bool

// Create renders transactions as a YNAB-importable CSV. Amounts are printed
// in whole currency units because that is what the CSV import dialog expects.
func Create(records []models.Transaction, filter FilterFunc) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Date", "Payee", "Memo", "Amount"})
	for _, r := range records {
		if filter == nil || filter(r) {
			_ = w.Write([]string{
				r.Date.Format("2006/01/02"),
				r.Payee,
				r.Notes,
				fmt.Sprintf("%.2f", r.AmountMajor()),
			})
		}
	}
	w.Flush()
	return buf.Bytes()
}
