package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/brunomvsouza/ynab.go/api/account"
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/charmbracelet/log"

	"github.com/mkoval/monoynab/pkg/models"
)

type fakeLedger struct {
	accounts   []*account.Account
	accountErr error
	createErr  error
	duplicates []string
	batches    [][]transaction.PayloadTransaction
}

func (f *fakeLedger) Accounts() ([]*account.Account, error) {
	return f.accounts, f.accountErr
}

func (f *fakeLedger) CreateTransactions(payloads []transaction.PayloadTransaction) (*transaction.OperationSummary, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.batches = append(f.batches, payloads)
	return &transaction.OperationSummary{DuplicateImportIDs: f.duplicates}, nil
}

func ledgerAccounts() []*account.Account {
	return []*account.Account{
		{ID: "y-checking", Name: "Checking"},
		{ID: "y-savings", Name: "Savings"},
	}
}

func mappings() map[string]string {
	return map[string]string{
		"1234": "Checking",
		"5678": "Savings",
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver(mappings(), ledgerAccounts())

	if id, ok := r.Resolve("1234"); !ok || id != "y-checking" {
		t.Errorf("Resolve(1234) = %q, %v; want y-checking, true", id, ok)
	}
	if _, ok := r.Resolve("0000"); ok {
		t.Error("unmapped digits must not resolve")
	}
}

func TestResolverMissingLedgerAccount(t *testing.T) {
	// Mapping names an account the ledger does not have.
	r := NewResolver(map[string]string{"1234": "Vacation"}, ledgerAccounts())
	if _, ok := r.Resolve("1234"); ok {
		t.Error("mapping to a missing ledger account must not resolve")
	}
}

func TestImportGroupsByDestination(t *testing.T) {
	ledger := &fakeLedger{accounts: ledgerAccounts()}
	imp := New(ledger, log.Default())

	r, err := imp.NewResolver(mappings())
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	date := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	txs := []models.Transaction{
		{ID: "T1", ImportedID: "T1", Date: date, AmountMinor: -4550, Payee: "Coffee", Notes: "Coffee _5812", SourceAccount: "1234"},
		{ID: "T2", ImportedID: "T2", Date: date, AmountMinor: 100000, Payee: "Salary", Notes: "Salary", SourceAccount: "5678"},
		{ID: "T3", ImportedID: "T3", Date: date, AmountMinor: -1200, Payee: "Metro", Notes: "Metro _4111", SourceAccount: "1234"},
	}

	sum, err := imp.Import(txs, r)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if sum.Imported != 3 || sum.Skipped != 0 || sum.Duplicates != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	if len(ledger.batches) != 2 {
		t.Fatalf("expected one batch per destination account, got %d", len(ledger.batches))
	}
	first := ledger.batches[0]
	if len(first) != 2 || first[0].AccountID != "y-checking" || first[1].AccountID != "y-checking" {
		t.Errorf("first batch should hold both checking transactions: %+v", first)
	}
	if *first[0].ImportID != "T1" || *first[1].ImportID != "T3" {
		t.Errorf("batch must preserve input order: %q, %q", *first[0].ImportID, *first[1].ImportID)
	}
}

func TestImportPayloadShape(t *testing.T) {
	ledger := &fakeLedger{accounts: ledgerAccounts()}
	imp := New(ledger, log.Default())
	r, _ := imp.NewResolver(mappings())

	date := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	tx := models.Transaction{
		ID: "T1", ImportedID: "T1", Date: date,
		AmountMinor: -4550, Payee: "Coffee", Notes: "Coffee _5812", SourceAccount: "1234",
	}

	if _, err := imp.Import([]models.Transaction{tx}, r); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	p := ledger.batches[0][0]
	if p.Amount != -45500 {
		t.Errorf("expected milliunit amount -45500, got %d", p.Amount)
	}
	if !p.Date.Time.Equal(date) {
		t.Errorf("expected date %v, got %v", date, p.Date.Time)
	}
	if p.Cleared != transaction.ClearingStatusCleared {
		t.Errorf("expected cleared status, got %v", p.Cleared)
	}
	if !p.Approved {
		t.Error("expected approved payload")
	}
	if p.PayeeName == nil || *p.PayeeName != "Coffee" {
		t.Errorf("unexpected payee: %v", p.PayeeName)
	}
	if p.Memo == nil || *p.Memo != "Coffee _5812" {
		t.Errorf("unexpected memo: %v", p.Memo)
	}
	if p.ImportID == nil || *p.ImportID != "T1" {
		t.Errorf("unexpected import id: %v", p.ImportID)
	}
}

func TestImportSkipsUnresolvable(t *testing.T) {
	ledger := &fakeLedger{accounts: ledgerAccounts()}
	imp := New(ledger, log.Default())
	r, _ := imp.NewResolver(map[string]string{"1234": "Vacation"}) // not in ledger

	txs := []models.Transaction{
		{ID: "T1", ImportedID: "T1", SourceAccount: "1234"},
		{ID: "T2", ImportedID: "T2", SourceAccount: "0000"},
	}

	sum, err := imp.Import(txs, r)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if sum.Skipped != 2 || sum.Imported != 0 {
		t.Errorf("expected both transactions skipped, got %+v", sum)
	}
	if len(ledger.batches) != 0 {
		t.Errorf("expected no ledger calls, got %d", len(ledger.batches))
	}
}

func TestImportCountsDuplicates(t *testing.T) {
	ledger := &fakeLedger{accounts: ledgerAccounts(), duplicates: []string{"T1"}}
	imp := New(ledger, log.Default())
	r, _ := imp.NewResolver(mappings())

	txs := []models.Transaction{
		{ID: "T1", ImportedID: "T1", SourceAccount: "1234"},
		{ID: "T2", ImportedID: "T2", SourceAccount: "1234"},
	}

	sum, err := imp.Import(txs, r)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if sum.Imported != 1 || sum.Duplicates != 1 {
		t.Errorf("expected 1 imported and 1 duplicate, got %+v", sum)
	}
}

func TestImportPropagatesLedgerError(t *testing.T) {
	boom := errors.New("ledger down")
	ledger := &fakeLedger{accounts: ledgerAccounts(), createErr: boom}
	imp := New(ledger, log.Default())
	r, _ := imp.NewResolver(mappings())

	_, err := imp.Import([]models.Transaction{{ID: "T1", ImportedID: "T1", SourceAccount: "1234"}}, r)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped ledger error, got %v", err)
	}
}
