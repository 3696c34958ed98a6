package service

import (
	"context"
	"fmt"
	"time"

	"smsguard/internal/cache"
	"smsguard/internal/model"
	"smsguard/internal/repository"
)

const defaultUserCacheTTL = 5 * time.Minute

// UserService resolves users by id for authenticated requests.
type UserService interface {
	// GetUser returns the user without its password hash, or nil when no such user exists.
	GetUser(ctx context.Context, id uint) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
	ttl   time.Duration
}

// NewUserService builds a UserService with repository and cache. A nil cache
// disables caching.
func NewUserService(repo repository.UserRepository, cache *cache.Client, ttl time.Duration) UserService {
	if ttl <= 0 {
		ttl = defaultUserCacheTTL
	}
	return &userService{repo: repo, cache: cache, ttl: ttl}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, s.ttl)
	return user, nil
}
