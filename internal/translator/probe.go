package translator

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ProbeWithRetry calls p.Probe until it succeeds, retries are exhausted or
// ctx is done. Translators that do not implement Prober pass immediately.
func ProbeWithRetry(ctx context.Context, t Translator, retries uint64, interval time.Duration) error {
	p, ok := t.(Prober)
	if !ok {
		return nil
	}
	attempt := 0
	op := func() error {
		attempt++
		err := p.Probe(ctx)
		if err != nil {
			slog.Debug("translator probe failed", "attempt", attempt, "error", err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), retries), ctx)
	return backoff.Retry(op, policy)
}
