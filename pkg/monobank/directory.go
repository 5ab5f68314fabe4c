package monobank

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// ClientInfoSource provides the remote account list. *Client satisfies it.
type ClientInfoSource interface {
	ClientInfo(ctx context.Context) (*ClientInfo, error)
}

// Directory holds the set of remote bank accounts and lookup tables between
// an account's opaque id and its last-four card digits. The tables are
// rebuilt as a whole on Refresh and swapped in atomically, so an overlapping
// webhook-triggered pass can read them without locking.
type Directory struct {
	source ClientInfoSource
	logger *log.Logger
	tables atomic.Pointer[directoryTables]
}

type directoryTables struct {
	accounts    []Account
	idByDigits  map[string]string
	digitsByID  map[string]string
}

// NewDirectory creates an empty directory. Refresh must be called before the
// first lookup.
func NewDirectory(source ClientInfoSource, logger *log.Logger) *Directory {
	return &Directory{source: source, logger: logger}
}

// Refresh pulls client-info and rebuilds the lookup tables. A provider-side
// account change after a refresh is not picked up until the next one.
func (d *Directory) Refresh(ctx context.Context) error {
	info, err := d.source.ClientInfo(ctx)
	if err != nil {
		return fmt.Errorf("refreshing account directory: %w", err)
	}

	t := &directoryTables{
		accounts:   info.Accounts,
		idByDigits: make(map[string]string, len(info.Accounts)),
		digitsByID: make(map[string]string, len(info.Accounts)),
	}
	for _, acc := range info.Accounts {
		digits := acc.LastFour()
		t.idByDigits[digits] = acc.ID
		t.digitsByID[acc.ID] = digits
	}
	d.tables.Store(t)

	d.logger.Info("account directory refreshed", "accounts", len(info.Accounts))
	return nil
}

// Accounts returns the remote accounts from the last refresh.
func (d *Directory) Accounts() []Account {
	if t := d.tables.Load(); t != nil {
		return t.accounts
	}
	return nil
}

// AccountID looks up the opaque account id for a last-four digits key.
func (d *Directory) AccountID(lastFour string) (string, bool) {
	t := d.tables.Load()
	if t == nil {
		return "", false
	}
	id, ok := t.idByDigits[lastFour]
	return id, ok
}

// LastFour looks up the last-four digits for an opaque account id.
func (d *Directory) LastFour(accountID string) (string, bool) {
	t := d.tables.Load()
	if t == nil {
		return "", false
	}
	digits, ok := t.digitsByID[accountID]
	return digits, ok
}
