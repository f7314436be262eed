package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/firatemu/nuviabutik/internal/metrics"
	"github.com/firatemu/nuviabutik/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	sequenceMaxRetries = 10
	sequenceBackoff    = 15 * time.Millisecond
)

// SequenceService mints strictly increasing numbers per (prefix, day) scope.
// Numbers are formatted <prefix><YYYYMMDD><%04d>; the fallback path swaps the
// counter suffix for HHMMSS and reports degraded=true.
type SequenceService interface {
	// Next mints the next number in its own transaction. N concurrent callers
	// on the same scope receive exactly the values {1..N}. When the retry
	// budget is exhausted by conflicts, a timestamp fallback number is
	// returned with degraded=true and a nil error.
	Next(ctx context.Context, prefix string, day time.Time) (number string, degraded bool, err error)

	// NextTx mints inside an enclosing transaction; settlement uses it so the
	// sale number commits or rolls back with the sale. Conflicts surface to
	// the caller, who owns the retry loop.
	NextTx(tx *gorm.DB, prefix string, day time.Time) (string, error)

	// Preview formats the number Next would likely return. Advisory only.
	Preview(ctx context.Context, prefix string, day time.Time) (string, error)

	// Fallback builds the degraded timestamp-suffixed number.
	Fallback(prefix string, at time.Time) string
}

type sequenceService struct {
	repo repository.SequenceRepository
}

func NewSequenceService(repo repository.SequenceRepository) SequenceService {
	return &sequenceService{repo: repo}
}

func scopeFor(prefix string, day time.Time) string {
	return prefix + ":" + day.Format("20060102")
}

func formatNumber(prefix string, day time.Time, value int) string {
	return fmt.Sprintf("%s%s%04d", prefix, day.Format("20060102"), value)
}

func (s *sequenceService) Next(ctx context.Context, prefix string, day time.Time) (string, bool, error) {
	scope := scopeFor(prefix, day)

	var lastErr error
	for attempt := 1; attempt <= sequenceMaxRetries; attempt++ {
		var value int
		err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			var err error
			value, err = s.repo.NextTx(tx, scope)
			return err
		})
		if err == nil {
			return formatNumber(prefix, day, value), false, nil
		}
		if !isRetryable(err) {
			return "", false, err
		}
		lastErr = err
		// Jittered backoff so retrying contenders don't re-collide in lockstep.
		time.Sleep(sequenceBackoff + time.Duration(rand.Intn(10))*time.Millisecond)
	}

	fallback := s.Fallback(prefix, time.Now())
	metrics.SequenceFallbacks.Inc()
	log.Warn().
		Str("scope", scope).
		Str("fallback", fallback).
		Err(lastErr).
		Msg("sequence counter contention exhausted retries, issuing timestamp fallback")
	return fallback, true, nil
}

func (s *sequenceService) NextTx(tx *gorm.DB, prefix string, day time.Time) (string, error) {
	value, err := s.repo.NextTx(tx, scopeFor(prefix, day))
	if err != nil {
		return "", err
	}
	return formatNumber(prefix, day, value), nil
}

func (s *sequenceService) Preview(ctx context.Context, prefix string, day time.Time) (string, error) {
	value, err := s.repo.Peek(ctx, scopeFor(prefix, day))
	if err != nil {
		return "", err
	}
	return formatNumber(prefix, day, value+1), nil
}

func (s *sequenceService) Fallback(prefix string, at time.Time) string {
	return prefix + at.Format("20060102") + at.Format("150405")
}
