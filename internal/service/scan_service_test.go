package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"smsguard/internal/classifier"
	apperrors "smsguard/internal/errors"
	"smsguard/internal/logger"
	"smsguard/internal/model"
)

func spamResult(msg string) *classifier.Result {
	return &classifier.Result{
		Message:         msg,
		Transformed:     "win cash",
		Prediction:      1,
		Verdict:         model.VerdictSpam,
		Probabilities:   model.Probabilities{"Ham": "3.00%", "Spam": "97.00%"},
		SpamProbability: decimal.RequireFromString("97"),
	}
}

func hamResult(msg string) *classifier.Result {
	return &classifier.Result{
		Message:         msg,
		Prediction:      0,
		Verdict:         model.VerdictHam,
		Probabilities:   model.Probabilities{"Ham": "99.00%", "Spam": "1.00%"},
		SpamProbability: decimal.RequireFromString("1"),
	}
}

func TestScanService_Check(t *testing.T) {
	mockRepo := new(MockScanRepository)
	mockClassifier := new(MockClassifier)

	mockClassifier.On("Classify", mock.Anything, "WIN CASH NOW").Return(spamResult("WIN CASH NOW"), nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.ScanRecord")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.ScanRecord).ID = 11
		}).
		Return(nil)

	svc := NewScanService(mockRepo, mockClassifier, nil)
	scan, err := svc.Check(context.Background(), 2, "WIN CASH NOW")

	require.NoError(t, err)
	assert.Equal(t, uint(11), scan.ID)
	assert.Equal(t, uint(2), scan.UserID)
	assert.Equal(t, "WIN CASH NOW", scan.Message)
	assert.Equal(t, model.VerdictSpam, scan.Verdict)
	assert.Equal(t, 1, scan.Prediction)
	assert.Equal(t, "win cash", scan.Transformed)
	assert.True(t, decimal.RequireFromString("97").Equal(scan.SpamProbability))

	mockRepo.AssertExpectations(t)
	mockClassifier.AssertExpectations(t)
}

func TestScanService_Check_MessageRequired(t *testing.T) {
	for _, msg := range []string{"", "   ", "\n\t"} {
		mockRepo := new(MockScanRepository)
		mockClassifier := new(MockClassifier)

		svc := NewScanService(mockRepo, mockClassifier, nil)
		scan, err := svc.Check(context.Background(), 2, msg)

		assert.ErrorIs(t, err, apperrors.ErrMessageRequired)
		assert.Nil(t, scan)
		mockClassifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestScanService_Check_MessageTooLong(t *testing.T) {
	mockRepo := new(MockScanRepository)
	mockClassifier := new(MockClassifier)

	svc := NewScanService(mockRepo, mockClassifier, nil)
	scan, err := svc.Check(context.Background(), 2, strings.Repeat("a", model.MaxMessageBytes+1))

	assert.ErrorIs(t, err, apperrors.ErrMessageTooLong)
	assert.Nil(t, scan)
	mockClassifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestScanService_Check_LogsVerdict(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mockRepo := new(MockScanRepository)
	mockClassifier := new(MockClassifier)
	mockClassifier.On("Classify", mock.Anything, "WIN").Return(spamResult("WIN"), nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewScanService(mockRepo, mockClassifier, logger.NewFromZap(zap.New(core)))
	_, err := svc.Check(context.Background(), 2, "WIN")
	require.NoError(t, err)

	entries := logs.FilterMessage("message classified").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "scan_service", fields["component"])
	assert.Equal(t, true, fields["spam"])
}

func TestScanService_Check_ClassifierFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable", &apperrors.UpstreamError{Kind: apperrors.ErrUpstreamUnavailable, Err: errors.New("connection refused")}},
		{"rejected", &apperrors.UpstreamError{Kind: apperrors.ErrUpstreamRejected, StatusCode: 500, Body: "boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockScanRepository)
			mockClassifier := new(MockClassifier)
			mockClassifier.On("Classify", mock.Anything, "hello").Return(nil, tt.err)

			svc := NewScanService(mockRepo, mockClassifier, nil)
			scan, err := svc.Check(context.Background(), 2, "hello")

			assert.ErrorIs(t, err, tt.err.(*apperrors.UpstreamError).Kind)
			assert.Nil(t, scan)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestScanService_Check_PersistFailure(t *testing.T) {
	mockRepo := new(MockScanRepository)
	mockClassifier := new(MockClassifier)
	mockClassifier.On("Classify", mock.Anything, "hello").Return(hamResult("hello"), nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.Persistence("create scan", errors.New("disk full")))

	svc := NewScanService(mockRepo, mockClassifier, nil)
	scan, err := svc.Check(context.Background(), 2, "hello")

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Nil(t, scan)
}

func TestScanService_StatsPerUser(t *testing.T) {
	repo := newMemScanRepository()
	mockClassifier := new(MockClassifier)
	mockClassifier.On("Classify", mock.Anything, mock.MatchedBy(func(s string) bool { return s[0] == 'S' })).
		Return(spamResult("spam"), nil)
	mockClassifier.On("Classify", mock.Anything, mock.MatchedBy(func(s string) bool { return s[0] == 'H' })).
		Return(hamResult("ham"), nil)

	svc := NewScanService(repo, mockClassifier, nil)
	ctx := context.Background()
	const userA, userB = uint(1), uint(2)

	for _, msg := range []string{"S1", "H1", "S2"} {
		_, err := svc.Check(ctx, userA, msg)
		require.NoError(t, err)
	}
	_, err := svc.Check(ctx, userB, "S3")
	require.NoError(t, err)

	statsA, err := svc.Stats(ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, model.ScanStats{Total: 3, Spam: 2, Ham: 1}, statsA)

	statsB, err := svc.Stats(ctx, userB)
	require.NoError(t, err)
	assert.Equal(t, model.ScanStats{Total: 1, Spam: 1, Ham: 0}, statsB)

	listA, err := svc.List(ctx, userA)
	require.NoError(t, err)
	require.Len(t, listA, 3)
	assert.Equal(t, "S2", listA[0].Message)
}

func TestScanService_CrossUserAccess(t *testing.T) {
	repo := newMemScanRepository()
	mockClassifier := new(MockClassifier)
	mockClassifier.On("Classify", mock.Anything, "mine").Return(hamResult("mine"), nil)

	svc := NewScanService(repo, mockClassifier, nil)
	ctx := context.Background()

	owned, err := svc.Check(ctx, 1, "mine")
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, owned.ID)
	assert.ErrorIs(t, err, apperrors.ErrScanNotFound)

	err = svc.Delete(ctx, 2, owned.ID)
	assert.ErrorIs(t, err, apperrors.ErrScanNotFound)

	got, err := svc.Get(ctx, 1, owned.ID)
	require.NoError(t, err)
	assert.Equal(t, owned.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, 1, owned.ID))
	_, err = svc.Get(ctx, 1, owned.ID)
	assert.ErrorIs(t, err, apperrors.ErrScanNotFound)
}

func TestScanService_StoreErrorsPropagate(t *testing.T) {
	storeErr := apperrors.Persistence("get scan", errors.New("bad conn"))

	mockRepo := new(MockScanRepository)
	mockRepo.On("GetByID", mock.Anything, uint(3), uint(1)).Return(nil, storeErr)
	mockRepo.On("DeleteByID", mock.Anything, uint(3), uint(1)).Return(int64(0), storeErr)
	mockRepo.On("CountTotals", mock.Anything, uint(1)).Return(model.ScanStats{}, storeErr)

	svc := NewScanService(mockRepo, new(MockClassifier), nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, 1, 3)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.ErrorIs(t, svc.Delete(ctx, 1, 3), apperrors.ErrPersistence)
	_, err = svc.Stats(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}
