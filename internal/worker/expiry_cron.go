package worker

// expiry_cron.go
// Background goroutine that periodically flips vouchers past their expiry
// date from active to expired. Reads already report expiry lazily; the sweep
// keeps the stored status and the reported one from drifting apart for long.

import (
	"context"
	"time"

	"github.com/firatemu/nuviabutik/internal/repository"

	"github.com/rs/zerolog/log"
)

const expiryTickInterval = time.Hour

// StartExpiryCron launches the voucher expiry sweep. It ticks hourly and
// respects the context for graceful shutdown.
func StartExpiryCron(ctx context.Context, vouchers repository.VoucherRepository) {
	go func() {
		ticker := time.NewTicker(expiryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("expiry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("expiry_cron: shutting down")
				return
			case <-ticker.C:
				sweepExpired(ctx, vouchers)
			}
		}
	}()
}

func sweepExpired(ctx context.Context, vouchers repository.VoucherRepository) {
	n, err := vouchers.ExpireStale(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("expiry_cron: sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("expiry_cron: vouchers expired")
	}
}
