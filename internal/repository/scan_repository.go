package repository

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "smsguard/internal/errors"
	"smsguard/internal/model"
)

// ScanRepository defines scan record persistence operations. Every read and
// delete is scoped to the owning user.
type ScanRepository interface {
	Create(ctx context.Context, scan *model.ScanRecord) error
	ListByUser(ctx context.Context, userID uint) ([]model.ScanRecord, error)
	// GetByID returns nil when the record does not exist or is owned by someone else.
	GetByID(ctx context.Context, id, userID uint) (*model.ScanRecord, error)
	// DeleteByID returns the number of removed rows (0 or 1).
	DeleteByID(ctx context.Context, id, userID uint) (int64, error)
	CountTotals(ctx context.Context, userID uint) (model.ScanStats, error)
}

type scanRepository struct {
	db *gorm.DB
}

// NewScanRepository creates a new scan repository.
func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

// Create persists a scan and fills in its ID and CreatedAt.
func (r *scanRepository) Create(ctx context.Context, scan *model.ScanRecord) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(scan).Error; err != nil {
		return apperrors.Persistence("create scan", err)
	}
	return nil
}

// ListByUser returns the user's scans, newest first.
func (r *scanRepository) ListByUser(ctx context.Context, userID uint) ([]model.ScanRecord, error) {
	scans := make([]model.ScanRecord, 0)
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&scans).Error; err != nil {
		return nil, apperrors.Persistence("list scans", err)
	}
	return scans, nil
}

func (r *scanRepository) GetByID(ctx context.Context, id, userID uint) (*model.ScanRecord, error) {
	var scan model.ScanRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&scan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence("get scan", err)
	}
	return &scan, nil
}

func (r *scanRepository) DeleteByID(ctx context.Context, id, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.ScanRecord{})
	if res.Error != nil {
		return 0, apperrors.Persistence("delete scan", res.Error)
	}
	return res.RowsAffected, nil
}

// CountTotals runs the three counts concurrently. They are independent reads,
// so a scan inserted meanwhile may show up in some counts and not others.
func (r *scanRepository) CountTotals(ctx context.Context, userID uint) (model.ScanStats, error) {
	var stats model.ScanStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.count(gctx, userID, "", &stats.Total)
	})
	g.Go(func() error {
		return r.count(gctx, userID, model.VerdictSpam, &stats.Spam)
	})
	g.Go(func() error {
		return r.count(gctx, userID, model.VerdictHam, &stats.Ham)
	})

	if err := g.Wait(); err != nil {
		return model.ScanStats{}, apperrors.Persistence("count scans", err)
	}
	return stats, nil
}

func (r *scanRepository) count(ctx context.Context, userID uint, verdict model.Verdict, dst *int64) error {
	q := r.db.WithContext(ctx).Model(&model.ScanRecord{}).Where("user_id = ?", userID)
	if verdict != "" {
		q = q.Where("verdict = ?", verdict)
	}
	return q.Count(dst).Error
}
