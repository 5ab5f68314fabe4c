package monobank

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkoval/monoynab/pkg/models"
)

// Defaults for the fetcher. The provider caps each statement request's time
// window and rate-limits aggressively, so requests are chunked and spaced
// out proactively.
const (
	DefaultChunk   = 30 * 24 * time.Hour
	DefaultDelay   = 5 * time.Second
	DefaultBackoff = 60 * time.Second
)

// StatementSource issues a single statement request. *Client satisfies it.
type StatementSource interface {
	Statement(ctx context.Context, accountID string, from, to time.Time) ([]models.StatementItem, error)
}

// FetcherConfig tunes chunking and pacing. Zero values fall back to the
// defaults above.
type FetcherConfig struct {
	Chunk   time.Duration // widest window per request
	Delay   time.Duration // pause after each successful request
	Backoff time.Duration // wait before retrying a rate-limited request
}

// Fetcher retrieves statement records for one account over an arbitrary date
// range, walking the range in chunks no wider than the provider's window cap.
// Requests against a single account are strictly sequential.
type Fetcher struct {
	source  StatementSource
	chunk   time.Duration
	delay   time.Duration
	backoff time.Duration
	logger  *log.Logger
}

// NewFetcher creates a fetcher over the given statement source.
func NewFetcher(source StatementSource, cfg FetcherConfig, logger *log.Logger) *Fetcher {
	if cfg.Chunk <= 0 {
		cfg.Chunk = DefaultChunk
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &Fetcher{
		source:  source,
		chunk:   cfg.Chunk,
		delay:   cfg.Delay,
		backoff: cfg.Backoff,
		logger:  logger,
	}
}

// Fetch returns every statement record in [from, to], in chronological chunk
// order with provider order preserved inside each chunk. A rate-limited
// chunk is retried after the backoff interval until it succeeds; any other
// error aborts the fetch immediately.
func (f *Fetcher) Fetch(ctx context.Context, accountID string, from, to time.Time) ([]models.StatementItem, error) {
	var out []models.StatementItem

	cur := from
	for !cur.After(to) {
		end := cur.Add(f.chunk)
		if end.After(to) {
			end = to
		}

		items, err := f.source.Statement(ctx, accountID, cur, end)
		if errors.Is(err, ErrRateLimited) {
			f.logger.Warn("rate limit hit, retrying chunk",
				"account", accountID, "from", cur, "to", end, "backoff", f.backoff)
			if err := sleep(ctx, f.backoff); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		f.logger.Debug("fetched statement chunk",
			"account", accountID, "from", cur, "to", end, "records", len(items))
		out = append(out, items...)

		// Next chunk starts one second past this one so boundary seconds are
		// never double-counted.
		cur = end.Add(time.Second)
		if !cur.After(to) {
			if err := sleep(ctx, f.delay); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// sleep waits for d or until ctx is done, whichever comes first.
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
