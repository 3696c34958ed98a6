package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"smsguard/internal/classifier"
	apperrors "smsguard/internal/errors"
	"smsguard/internal/logger"
	"smsguard/internal/model"
	"smsguard/internal/repository"
)

// ScanService classifies messages and manages the caller's scan history.
// Every operation is scoped to the given user id.
type ScanService interface {
	Check(ctx context.Context, userID uint, message string) (*model.ScanRecord, error)
	List(ctx context.Context, userID uint) ([]model.ScanRecord, error)
	Get(ctx context.Context, userID, id uint) (*model.ScanRecord, error)
	Delete(ctx context.Context, userID, id uint) error
	Stats(ctx context.Context, userID uint) (model.ScanStats, error)
}

type scanService struct {
	scans      repository.ScanRepository
	classifier classifier.Classifier
	log        *logger.Logger
}

// NewScanService creates a new scan service.
func NewScanService(scans repository.ScanRepository, c classifier.Classifier, log *logger.Logger) ScanService {
	if log == nil {
		log = logger.Nop()
	}
	return &scanService{scans: scans, classifier: c, log: log.With(zap.String("component", "scan_service"))}
}

// Check classifies message and stores the verdict. Nothing is written unless
// the classifier produced a verdict.
func (s *scanService) Check(ctx context.Context, userID uint, message string) (*model.ScanRecord, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.ErrMessageRequired
	}
	if len(message) > model.MaxMessageBytes {
		return nil, apperrors.ErrMessageTooLong
	}

	result, err := s.classifier.Classify(ctx, message)
	if err != nil {
		s.log.Warn(ctx, "classifier call failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	scan := &model.ScanRecord{
		UserID:          userID,
		Message:         message,
		Verdict:         result.Verdict,
		Prediction:      result.Prediction,
		Probabilities:   result.Probabilities,
		SpamProbability: result.SpamProbability,
		Transformed:     result.Transformed,
	}
	if err := s.scans.Create(ctx, scan); err != nil {
		s.log.Error(ctx, "classified message was not stored",
			zap.Uint("user_id", userID),
			zap.String("verdict", string(result.Verdict)),
			zap.Error(err))
		return nil, err
	}
	s.log.Debug(ctx, "message classified",
		zap.Uint("user_id", userID),
		zap.Uint("scan_id", scan.ID),
		zap.Bool("spam", scan.Verdict.IsSpam()))
	return scan, nil
}

func (s *scanService) List(ctx context.Context, userID uint) ([]model.ScanRecord, error) {
	return s.scans.ListByUser(ctx, userID)
}

func (s *scanService) Get(ctx context.Context, userID, id uint) (*model.ScanRecord, error) {
	scan, err := s.scans.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if scan == nil {
		return nil, apperrors.ErrScanNotFound
	}
	return scan, nil
}

func (s *scanService) Delete(ctx context.Context, userID, id uint) error {
	n, err := s.scans.DeleteByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrScanNotFound
	}
	return nil
}

func (s *scanService) Stats(ctx context.Context, userID uint) (model.ScanStats, error) {
	return s.scans.CountTotals(ctx, userID)
}
