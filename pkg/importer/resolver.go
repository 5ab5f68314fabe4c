package importer

import "github.com/brunomvsouza/ynab.go/api/account"

// Resolver maps a transaction's source account digits to a destination
// ledger account id. It is immutable once built: construct a fresh one per
// pass from the live account list, share it read-only across the pass.
type Resolver struct {
	idByDigits map[string]string
}

// NewResolver crosses the configured digits→name mappings with the ledger's
// account list. Mappings that name an account missing from the ledger simply
// produce no entry; the miss surfaces as a skip at import time.
func NewResolver(mappings map[string]string, accounts []*account.Account) *Resolver {
	idByName := make(map[string]string, len(accounts))
	for _, acc := range accounts {
		idByName[acc.Name] = acc.ID
	}

	idByDigits := make(map[string]string, len(mappings))
	for digits, name := range mappings {
		if id, ok := idByName[name]; ok {
			idByDigits[digits] = id
		}
	}
	return &Resolver{idByDigits: idByDigits}
}

// Resolve returns the destination account id for the source digits, or
// false when no mapping or no matching ledger account exists.
func (r *Resolver) Resolve(sourceDigits string) (string, bool) {
	id, ok := r.idByDigits[sourceDigits]
	return id, ok
}
