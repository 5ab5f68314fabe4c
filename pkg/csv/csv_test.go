package csv

import (
	"strings"
	"testing"
	"time"

	"github.com/mkoval/monoynab/pkg/models"
)

func testTransactions() []models.Transaction {
	date := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []models.Transaction{
		{Date: date, Payee: "Coffee", Notes: "Coffee _5812", AmountMinor: -4550},
		{Date: date.Add(24 * time.Hour), Payee: "Salary", Notes: "Salary", AmountMinor: 1000000},
	}
}

func TestCreate(t *testing.T) {
	out := string(Create(testTransactions(), nil))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Date,Payee,Memo,Amount" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "2024/05/01,Coffee,Coffee _5812,-45.50" {
		t.Errorf("unexpected row %q", lines[1])
	}
	if lines[2] != "2024/05/02,Salary,Salary,10000.00" {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestCreateFilter(t *testing.T) {
	onlyOutflows := func(tx models.Transaction) bool { return tx.AmountMinor < 0 }
	out := string(Create(testTransactions(), onlyOutflows))

	if strings.Contains(out, "Salary") {
		t.Errorf("filtered row leaked into output:\n%s", out)
	}
	if !strings.Contains(out, "Coffee") {
		t.Errorf("expected Coffee row in output:\n%s", out)
	}
}

func TestCreateQuotesSeparators(t *testing.T) {
	txs := []models.Transaction{{
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Payee:       "Acme, Inc.",
		Notes:       "Transfer | Counter: Doe, John",
		AmountMinor: -100,
	}}

	out := string(Create(txs, nil))
	if !strings.Contains(out, `"Acme, Inc."`) {
		t.Errorf("payee with comma must be quoted:\n%s", out)
	}
}
