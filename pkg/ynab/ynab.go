package ynab

import (
	"fmt"

	"github.com/brunomvsouza/ynab.go"
	"github.com/brunomvsouza/ynab.go/api/account"
	"github.com/brunomvsouza/ynab.go/api/budget"
	"github.com/brunomvsouza/ynab.go/api/transaction"
)

// Client wraps the YNAB API client for a single budget. YNAB is the system
// of record: it deduplicates transactions by import_id, which is what makes
// repeated sync passes over overlapping windows safe.
type Client struct {
	client   ynab.ClientServicer
	budgetID string
}

// New creates a YNAB client bound to one budget.
func New(token, budgetID string) *Client {
	return &Client{
		client:   ynab.NewClient(token),
		budgetID: budgetID,
	}
}

// BudgetID returns the configured budget id.
func (c *Client) BudgetID() string {
	return c.budgetID
}

// Accounts returns the budget's open, non-deleted accounts.
func (c *Client) Accounts() ([]*account.Account, error) {
	snapshot, err := c.client.Account().GetAccounts(c.budgetID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching ynab accounts: %w", err)
	}

	accounts := make([]*account.Account, 0, len(snapshot.Accounts))
	for _, acc := range snapshot.Accounts {
		if acc.Deleted || acc.Closed {
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// CreateTransactions submits a batch to the budget in one API call. Payloads
// whose ImportID already exists are reported back as duplicates instead of
// being inserted again.
func (c *Client) CreateTransactions(payloads []transaction.PayloadTransaction) (*transaction.OperationSummary, error) {
	if len(payloads) == 0 {
		return &transaction.OperationSummary{}, nil
	}
	summary, err := c.client.Transaction().CreateTransactions(c.budgetID, payloads)
	if err != nil {
		return nil, fmt.Errorf("creating ynab transactions: %w", err)
	}
	return summary, nil
}

// Budgets lists the budgets visible to the token, for inspection commands.
func (c *Client) Budgets() ([]*budget.Summary, error) {
	budgets, err := c.client.Budget().GetBudgets()
	if err != nil {
		return nil, fmt.Errorf("fetching ynab budgets: %w", err)
	}
	return budgets, nil
}
