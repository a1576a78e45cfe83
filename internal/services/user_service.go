package services

import (
	"context"
	"time"

	"guild-chat/internal/redis"
	"guild-chat/internal/repository"
	guild_errors "guild-chat/pkg/errors"

	"github.com/google/uuid"
)

// UserService serves profiles and is the sender-name directory for
// the notification path. Lookups go through the Redis profile cache
// first; a miss falls back to Postgres and refills the cache.
type UserService struct {
	userRepo repository.UserRepository
	cache    *redis.CacheStore
}

func NewUserService(userRepo repository.UserRepository, cache *redis.CacheStore) *UserService {
	return &UserService{userRepo: userRepo, cache: cache}
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (UserInfo, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return UserInfo{}, err
	}
	return UserInfo{
		ID:          u.ID.String(),
		DisplayName: u.DisplayName,
		Username:    u.Username,
		Email:       u.Email,
	}, nil
}

// DisplayName implements session.UserDirectory.
func (s *UserService) DisplayName(ctx context.Context, userID string) (string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", guild_errors.ErrInvalidInput
	}

	if s.cache != nil {
		if profile, err := s.cache.GetProfile(ctx, id); err == nil && profile != nil {
			return profile.DisplayName, nil
		}
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		_ = s.cache.SetProfile(ctx, &redis.ProfileCache{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			AvatarURL:   u.AvatarURL.String,
		})
	}
	return u.DisplayName, nil
}

func (s *UserService) SetOnline(ctx context.Context, userID uuid.UUID, online bool) error {
	if err := s.userRepo.UpdateOnlineStatus(ctx, userID, online); err != nil {
		return err
	}
	if !online {
		return s.userRepo.UpdateLastSeen(ctx, userID, time.Now())
	}
	return nil
}
