package models

import (
	"testing"
	"time"
)

func TestNewTransaction(t *testing.T) {
	item := StatementItem{
		ID:          "T1",
		Time:        1700000000,
		Description: "Coffee",
		MCC:         5812,
		Amount:      -4550,
	}

	tx := NewTransaction(item, "1234")

	if tx.ID != "T1" || tx.ImportedID != "T1" {
		t.Errorf("expected id and imported id T1, got %q / %q", tx.ID, tx.ImportedID)
	}
	if tx.AmountMinor != -4550 {
		t.Errorf("expected amount -4550, got %d", tx.AmountMinor)
	}
	if tx.Payee != "Coffee" {
		t.Errorf("expected payee Coffee, got %q", tx.Payee)
	}
	if tx.Notes != "Coffee _5812" {
		t.Errorf("expected notes %q, got %q", "Coffee _5812", tx.Notes)
	}
	if tx.SourceAccount != "1234" {
		t.Errorf("expected source account 1234, got %q", tx.SourceAccount)
	}

	wantDate := time.Unix(1700000000, 0).UTC()
	if !tx.Date.Equal(wantDate) || tx.Date.Location() != time.UTC {
		t.Errorf("expected UTC date %v, got %v", wantDate, tx.Date)
	}
}

func TestNewTransactionNotes(t *testing.T) {
	cases := []struct {
		name string
		item StatementItem
		want string
	}{
		{
			name: "description only",
			item: StatementItem{Description: "Taxi"},
			want: "Taxi",
		},
		{
			name: "mcc appended",
			item: StatementItem{Description: "Taxi", MCC: 4121},
			want: "Taxi _4121",
		},
		{
			name: "original mcc differs",
			item: StatementItem{Description: "Taxi", MCC: 4121, OriginalMCC: 4789},
			want: "Taxi _4121->4789",
		},
		{
			name: "original mcc equal is omitted",
			item: StatementItem{Description: "Taxi", MCC: 4121, OriginalMCC: 4121},
			want: "Taxi _4121",
		},
		{
			name: "counter name",
			item: StatementItem{Description: "Transfer", CounterName: "John Doe"},
			want: "Transfer | Counter: John Doe",
		},
		{
			name: "counter iban",
			item: StatementItem{Description: "Transfer", CounterIban: "UA213996220000026007233566001"},
			want: "Transfer | IBAN: UA213996220000026007233566001",
		},
		{
			name: "everything",
			item: StatementItem{
				Description: "Transfer",
				MCC:         4829,
				OriginalMCC: 4900,
				CounterName: "John Doe",
				CounterIban: "UA213996220000026007233566001",
			},
			want: "Transfer _4829->4900 | Counter: John Doe | IBAN: UA213996220000026007233566001",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := NewTransaction(tc.item, "1234")
			if tx.Notes != tc.want {
				t.Errorf("expected notes %q, got %q", tc.want, tx.Notes)
			}
		})
	}
}

func TestNewTransactionDeterministic(t *testing.T) {
	item := StatementItem{
		ID:          "T2",
		Time:        1700000000,
		Description: "Groceries",
		MCC:         5411,
		Amount:      -125099,
		CounterName: "Silpo",
	}

	first := NewTransaction(item, "5678")
	for i := 0; i < 5; i++ {
		if got := NewTransaction(item, "5678"); got != first {
			t.Fatalf("normalization is not deterministic: %+v != %+v", got, first)
		}
	}
}

func TestAmountMajor(t *testing.T) {
	tx := Transaction{AmountMinor: -4550}
	if got := tx.AmountMajor(); got != -45.50 {
		t.Errorf("expected -45.50, got %v", got)
	}
}
