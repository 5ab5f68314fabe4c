package models

import (
	"fmt"
	"time"
)

// StatementItem is a raw transaction record as returned by the Monobank
// statement endpoint and carried inside webhook events.
type StatementItem struct {
	ID              string `json:"id"`
	Time            int64  `json:"time"`
	Description     string `json:"description"`
	MCC             int    `json:"mcc,omitempty"`
	OriginalMCC     int    `json:"originalMcc,omitempty"`
	Amount          int64  `json:"amount"`
	OperationAmount int64  `json:"operationAmount,omitempty"`
	CurrencyCode    int    `json:"currencyCode,omitempty"`
	CommissionRate  int64  `json:"commissionRate,omitempty"`
	CashbackAmount  int64  `json:"cashbackAmount,omitempty"`
	Balance         int64  `json:"balance,omitempty"`
	Hold            bool   `json:"hold,omitempty"`
	Comment         string `json:"comment,omitempty"`
	CounterName     string `json:"counterName,omitempty"`
	CounterIban     string `json:"counterIban,omitempty"`
}

// Transaction is the canonical transaction shape the sync engine works with.
// AmountMinor keeps Monobank's signed minor units (kopecks); conversion to
// the ledger's unit happens once, in the importer.
type Transaction struct {
	ID            string
	Date          time.Time
	AmountMinor   int64
	Payee         string
	Notes         string
	ImportedID    string
	SourceAccount string
}

// NewTransaction normalizes a raw statement item into a canonical
// Transaction. It is pure: absent optional fields contribute nothing to the
// notes, and identical input always produces identical output.
func NewTransaction(item StatementItem, sourceDigits string) Transaction {
	notes := item.Description
	if item.MCC != 0 {
		notes += fmt.Sprintf(" _%d", item.MCC)
	}
	if item.OriginalMCC != 0 && item.OriginalMCC != item.MCC {
		notes += fmt.Sprintf("->%d", item.OriginalMCC)
	}
	if item.CounterName != "" {
		notes += " | Counter: " + item.CounterName
	}
	if item.CounterIban != "" {
		notes += " | IBAN: " + item.CounterIban
	}

	return Transaction{
		ID:            item.ID,
		Date:          time.Unix(item.Time, 0).UTC(),
		AmountMinor:   item.Amount,
		Payee:         item.Description,
		Notes:         notes,
		ImportedID:    item.ID,
		SourceAccount: sourceDigits,
	}
}

// AmountMajor returns the amount in whole currency units, for display only.
func (t Transaction) AmountMajor() float64 {
	return float64(t.AmountMinor) / 100
}
