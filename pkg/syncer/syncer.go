package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkoval/monoynab/pkg/importer"
	"github.com/mkoval/monoynab/pkg/models"
	"github.com/mkoval/monoynab/pkg/monobank"
)

// Defaults for the orchestration loop.
const (
	DefaultInterval     = time.Hour
	DefaultLookback     = 30 * 24 * time.Hour
	DefaultAccountDelay = 5 * time.Second
	DefaultCooldown     = 60 * time.Second
)

// Directory is the account directory slice the syncer needs.
type Directory interface {
	Refresh(ctx context.Context) error
	Accounts() []monobank.Account
	LastFour(accountID string) (string, bool)
}

// Fetcher retrieves statement records for one account over a date range.
type Fetcher interface {
	Fetch(ctx context.Context, accountID string, from, to time.Time) ([]models.StatementItem, error)
}

// Importer resolves and imports canonical transactions into the ledger.
type Importer interface {
	NewResolver(mappings map[string]string) (*importer.Resolver, error)
	Import(txs []models.Transaction, r *importer.Resolver) (importer.Summary, error)
}

// Config tunes a Syncer. Zero durations fall back to the defaults above.
type Config struct {
	Interval     time.Duration
	Lookback     time.Duration
	AccountDelay time.Duration // pause between accounts within a pass
	Cooldown     time.Duration // extra pause after a rate-limited account
	SyncAll      bool          // process accounts without a mapping entry too
	Mappings     map[string]string
}

// Syncer drives full synchronization passes across all eligible accounts and
// handles single-transaction webhook events. Passes hold no global lock;
// overlapping scheduled and webhook passes are safe because the ledger
// import is idempotent.
type Syncer struct {
	cfg    Config
	dir    Directory
	fetch  Fetcher
	imp    Importer
	logger *log.Logger
}

// New creates a Syncer.
func New(cfg Config, dir Directory, fetch Fetcher, imp Importer, logger *log.Logger) *Syncer {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.AccountDelay <= 0 {
		cfg.AccountDelay = DefaultAccountDelay
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Syncer{cfg: cfg, dir: dir, fetch: fetch, imp: imp, logger: logger}
}

// Run performs an immediate pass and then re-runs on the configured
// interval until ctx is done. Pass failures are logged, never fatal: the
// process stays alive for the next scheduled pass.
func (s *Syncer) Run(ctx context.Context) {
	s.runScheduled(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync loop stopped")
			return
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

func (s *Syncer) runScheduled(ctx context.Context) {
	now := time.Now()
	if err := s.RunPass(ctx, now.Add(-s.cfg.Lookback), now); err != nil {
		s.logger.Error("sync pass failed", "error", err)
	}
}

// RunPass synchronizes every eligible account over [from, to]. An error on
// one account is logged and the loop moves on; only a directory or ledger
// refresh failure aborts the whole pass.
func (s *Syncer) RunPass(ctx context.Context, from, to time.Time) error {
	s.logger.Info("starting sync pass", "from", from, "to", to)

	if err := s.dir.Refresh(ctx); err != nil {
		return err
	}
	resolver, err := s.imp.NewResolver(s.cfg.Mappings)
	if err != nil {
		return err
	}

	var imported, duplicates, skipped int
	for _, acc := range s.eligible() {
		txs, err := s.fetchAccount(ctx, acc, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		if len(txs) > 0 {
			sum, err := s.imp.Import(txs, resolver)
			imported += sum.Imported
			duplicates += sum.Duplicates
			skipped += sum.Skipped
			if err != nil {
				s.logger.Error("import failed for account, continuing with next",
					"account", acc.LastFour(), "error", err)
			}
		}
		if err := sleep(ctx, s.cfg.AccountDelay); err != nil {
			return err
		}
	}

	s.logger.Info("sync pass completed",
		"imported", imported, "duplicates", duplicates, "skipped", skipped)
	return nil
}

// Collect fetches and normalizes transactions for every eligible account
// without touching the ledger. Used by dry runs.
func (s *Syncer) Collect(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	if err := s.dir.Refresh(ctx); err != nil {
		return nil, err
	}

	var out []models.Transaction
	for _, acc := range s.eligible() {
		txs, err := s.fetchAccount(ctx, acc, from, to)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		out = append(out, txs...)
		if err := sleep(ctx, s.cfg.AccountDelay); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// HandleStatementEvent is the webhook path: one already-structured record,
// normalized directly and imported as a one-element batch. The fetcher and
// its chunking never get involved.
func (s *Syncer) HandleStatementEvent(ctx context.Context, accountID string, item models.StatementItem) error {
	digits, ok := s.dir.LastFour(accountID)
	if !ok {
		// The account may postdate the last refresh.
		if err := s.dir.Refresh(ctx); err != nil {
			return err
		}
		if digits, ok = s.dir.LastFour(accountID); !ok {
			s.logger.Warn("webhook event for unknown account", "account", accountID)
		}
	}

	resolver, err := s.imp.NewResolver(s.cfg.Mappings)
	if err != nil {
		return err
	}

	tx := models.NewTransaction(item, digits)
	sum, err := s.imp.Import([]models.Transaction{tx}, resolver)
	if err != nil {
		return err
	}
	s.logger.Info("webhook transaction processed",
		"account", digits, "id", item.ID, "imported", sum.Imported, "duplicates", sum.Duplicates)
	return nil
}

// eligible filters the directory down to accounts that either have a mapping
// entry or are covered by the sync-all flag.
func (s *Syncer) eligible() []monobank.Account {
	var out []monobank.Account
	for _, acc := range s.dir.Accounts() {
		digits := acc.LastFour()
		if _, mapped := s.cfg.Mappings[digits]; !mapped && !s.cfg.SyncAll {
			s.logger.Info("skipping account without mapping", "account", digits)
			continue
		}
		out = append(out, acc)
	}
	return out
}

// fetchAccount fetches and normalizes one account's records, isolating
// failures to that account. A rate-limit error additionally triggers the
// account-level cooldown before the caller moves on.
func (s *Syncer) fetchAccount(ctx context.Context, acc monobank.Account, from, to time.Time) ([]models.Transaction, error) {
	digits := acc.LastFour()
	items, err := s.fetch.Fetch(ctx, acc.ID, from, to)
	if err != nil {
		s.logger.Error("failed to fetch statement, continuing with next account",
			"account", digits, "error", err)
		if errors.Is(err, monobank.ErrRateLimited) {
			if serr := sleep(ctx, s.cfg.Cooldown); serr != nil {
				return nil, serr
			}
		}
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(items))
	for _, item := range items {
		txs = append(txs, models.NewTransaction(item, digits))
	}
	s.logger.Info("fetched account statement", "account", digits, "records", len(txs))
	return txs, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
