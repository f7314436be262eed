package repository

import (
	"context"
	"errors"

	"github.com/firatemu/nuviabutik/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository owns the per-scope counters behind sale numbers and any
// other daily sequences. A scope is "<prefix>:<YYYYMMDD>".
type SequenceRepository interface {
	// NextTx increments the scope's counter under SELECT ... FOR UPDATE and
	// returns the new value. The first caller for a scope creates the row;
	// a concurrent first-insert loses the unique race and surfaces the
	// duplicate-key error for the service layer to retry.
	NextTx(tx *gorm.DB, scope string) (int, error)

	// Peek reads the counter without locking. Advisory only — a concurrent
	// NextTx can outrun it before the caller acts on the value.
	Peek(ctx context.Context, scope string) (int, error)

	DB() *gorm.DB
}

type sequenceRepo struct{ db *gorm.DB }

func NewSequenceRepository(db *gorm.DB) SequenceRepository { return &sequenceRepo{db: db} }

func (r *sequenceRepo) DB() *gorm.DB { return r.db }

func (r *sequenceRepo) NextTx(tx *gorm.DB, scope string) (int, error) {
	var counter model.SequenceCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("scope = ?", scope).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = model.SequenceCounter{Scope: scope, Value: 0}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	counter.Value++
	if err := tx.Model(&model.SequenceCounter{}).Where("scope = ?", scope).
		Update("value", counter.Value).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

func (r *sequenceRepo) Peek(ctx context.Context, scope string) (int, error) {
	var counter model.SequenceCounter
	err := r.db.WithContext(ctx).Where("scope = ?", scope).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return counter.Value, err
}
