package importer

import (
	"fmt"

	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/account"
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/charmbracelet/log"

	"github.com/mkoval/monoynab/pkg/models"
)

// Ledger is the slice of the YNAB client the importer needs.
type Ledger interface {
	Accounts() ([]*account.Account, error)
	CreateTransactions(payloads []transaction.PayloadTransaction) (*transaction.OperationSummary, error)
}

// Summary reports the outcome of one import call.
type Summary struct {
	Imported   int // created in the ledger
	Duplicates int // already present, skipped by import id
	Skipped    int // no destination account resolved
}

// Importer groups canonical transactions by destination ledger account and
// submits them through the ledger's import primitive, one batch per account.
type Importer struct {
	ledger Ledger
	logger *log.Logger
}

// New returns a new Importer.
func New(ledger Ledger, logger *log.Logger) *Importer {
	return &Importer{ledger: ledger, logger: logger}
}

// NewResolver builds an immutable resolution table from the configured
// source-digits→account-name mappings and the ledger's live account list.
// Built once per pass and passed by reference into Import.
func (i *Importer) NewResolver(mappings map[string]string) (*Resolver, error) {
	accounts, err := i.ledger.Accounts()
	if err != nil {
		return nil, err
	}
	return NewResolver(mappings, accounts), nil
}

// Import resolves each transaction's destination and submits one batch per
// destination account. Unresolvable transactions are skipped with a warning;
// a ledger failure propagates and the next pass retries idempotently.
func (i *Importer) Import(txs []models.Transaction, r *Resolver) (Summary, error) {
	var sum Summary

	batches := make(map[string][]models.Transaction)
	var order []string
	for _, tx := range txs {
		destID, ok := r.Resolve(tx.SourceAccount)
		if !ok {
			i.logger.Warn("no ledger account mapped for source account, skipping transaction",
				"source", tx.SourceAccount, "id", tx.ID)
			sum.Skipped++
			continue
		}
		if _, seen := batches[destID]; !seen {
			order = append(order, destID)
		}
		batches[destID] = append(batches[destID], tx)
	}

	for _, destID := range order {
		batch := batches[destID]
		payloads := make([]transaction.PayloadTransaction, 0, len(batch))
		for _, tx := range batch {
			payloads = append(payloads, payload(destID, tx))
		}

		result, err := i.ledger.CreateTransactions(payloads)
		if err != nil {
			return sum, fmt.Errorf("importing %d transactions into account %s: %w", len(batch), destID, err)
		}

		created := len(batch) - len(result.DuplicateImportIDs)
		sum.Imported += created
		sum.Duplicates += len(result.DuplicateImportIDs)
		i.logger.Info("imported transactions",
			"account", destID, "created", created, "duplicates", len(result.DuplicateImportIDs))
	}

	return sum, nil
}

// payload converts a canonical transaction into the ledger's import shape.
// This is the single amount-conversion point: Monobank minor units become
// YNAB milliunits. ImportID carries the remote-assigned id untouched, so the
// ledger no-ops on anything it has already stored.
func payload(accountID string, tx models.Transaction) transaction.PayloadTransaction {
	importID := tx.ImportedID
	payee := clamp(tx.Payee, 200)
	memo := clamp(tx.Notes, 500)
	return transaction.PayloadTransaction{
		AccountID: accountID,
		Date:      api.Date{Time: tx.Date},
		Amount:    tx.AmountMinor * 10,
		Cleared:   transaction.ClearingStatusCleared,
		Approved:  true,
		PayeeName: &payee,
		Memo:      &memo,
		ImportID:  &importID,
	}
}

// clamp keeps free-text fields within the API's length limits.
func clamp(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
