package database

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"invoice-console/internal/database/models"
	"invoice-console/internal/invoice"
)

// Journal records write attempts. Recording is best effort: callers log a
// failure and carry on.
type Journal interface {
	Record(ctx context.Context, rec *models.SubmissionRecord) error
	Recent(ctx context.Context, limit int) ([]models.SubmissionRecord, error)
}

// NewRecord builds the journal entry for one attempt. err may be nil.
func NewRecord(operator string, action models.SubmissionAction, inv invoice.Invoice, err error) *models.SubmissionRecord {
	rec := &models.SubmissionRecord{
		Operator:  operator,
		Action:    action,
		InvoiceID: inv.ID,
		InvoiceNo: inv.InvoiceNo,
		Success:   err == nil,
	}
	if len(inv.Products) > 0 {
		rec.Total = inv.Total().StringFixed(2)
	}
	if err != nil {
		msg := err.Error()
		rec.Error = &msg
		var verr *invoice.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				rec.FailedField = append(rec.FailedField, f.Field)
			}
		}
	}
	return rec
}

type GormJournal struct {
	db *gorm.DB
}

func NewGormJournal(db *gorm.DB) *GormJournal {
	return &GormJournal{db: db}
}

func (j *GormJournal) Record(ctx context.Context, rec *models.SubmissionRecord) error {
	return j.db.WithContext(ctx).Create(rec).Error
}

func (j *GormJournal) Recent(ctx context.Context, limit int) ([]models.SubmissionRecord, error) {
	var records []models.SubmissionRecord
	err := j.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// MemoryJournal is used when no journal database is configured.
type MemoryJournal struct {
	mu      sync.Mutex
	records []models.SubmissionRecord
	max     int
	seq     int64
}

func NewMemoryJournal(max int) *MemoryJournal {
	if max <= 0 {
		max = 500
	}
	return &MemoryJournal{max: max}
}

func (j *MemoryJournal) Record(ctx context.Context, rec *models.SubmissionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++
	rec.ID = j.seq
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	j.records = append(j.records, *rec)
	if len(j.records) > j.max {
		j.records = j.records[len(j.records)-j.max:]
	}
	return nil
}

func (j *MemoryJournal) Recent(ctx context.Context, limit int) ([]models.SubmissionRecord, error) {
	j.mu.Lock()
	out := make([]models.SubmissionRecord, len(j.records))
	copy(out, j.records)
	j.mu.Unlock()

	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
