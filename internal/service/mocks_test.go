package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"smsguard/internal/classifier"
	"smsguard/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockScanRepository is a mock implementation of ScanRepository.
type MockScanRepository struct {
	mock.Mock
}

func (m *MockScanRepository) Create(ctx context.Context, scan *model.ScanRecord) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

func (m *MockScanRepository) ListByUser(ctx context.Context, userID uint) ([]model.ScanRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScanRecord), args.Error(1)
}

func (m *MockScanRepository) GetByID(ctx context.Context, id, userID uint) (*model.ScanRecord, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ScanRecord), args.Error(1)
}

func (m *MockScanRepository) DeleteByID(ctx context.Context, id, userID uint) (int64, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockScanRepository) CountTotals(ctx context.Context, userID uint) (model.ScanStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.ScanStats), args.Error(1)
}

// MockClassifier is a mock implementation of classifier.Classifier.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, text string) (*classifier.Result, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*classifier.Result), args.Error(1)
}

// memScanRepository keeps scans in memory with the same ownership rules as
// the gorm repository.
type memScanRepository struct {
	mu     sync.Mutex
	nextID uint
	scans  map[uint]model.ScanRecord
}

func newMemScanRepository() *memScanRepository {
	return &memScanRepository{scans: make(map[uint]model.ScanRecord)}
}

func (r *memScanRepository) Create(_ context.Context, scan *model.ScanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	scan.ID = r.nextID
	scan.CreatedAt = time.Now()
	r.scans[scan.ID] = *scan
	return nil
}

func (r *memScanRepository) ListByUser(_ context.Context, userID uint) ([]model.ScanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ScanRecord, 0)
	for _, s := range r.scans {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memScanRepository) GetByID(_ context.Context, id, userID uint) (*model.ScanRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scans[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	return &s, nil
}

func (r *memScanRepository) DeleteByID(_ context.Context, id, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scans[id]
	if !ok || s.UserID != userID {
		return 0, nil
	}
	delete(r.scans, id)
	return 1, nil
}

func (r *memScanRepository) CountTotals(_ context.Context, userID uint) (model.ScanStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats model.ScanStats
	for _, s := range r.scans {
		if s.UserID != userID {
			continue
		}
		stats.Total++
		switch s.Verdict {
		case model.VerdictSpam:
			stats.Spam++
		case model.VerdictHam:
			stats.Ham++
		}
	}
	return stats, nil
}
