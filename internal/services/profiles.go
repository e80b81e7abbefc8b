package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/AnshRaj112/nits-community-backend/internal/database"
	"github.com/AnshRaj112/nits-community-backend/internal/models"
)

type ProfileService struct {
	store database.DocumentStore

	profilesMu sync.Mutex
}

func NewProfileService(store database.DocumentStore) *ProfileService {
	return &ProfileService{store: store}
}

// SetAvatar creates the profile on first use. An empty avatar leaves the
// stored one untouched.
func (s *ProfileService) SetAvatar(ctx context.Context, identity, avatar string) (models.Profile, error) {
	if identity == "" {
		return models.Profile{}, ErrUnauthorized
	}

	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()

	profiles, err := s.store.LoadProfiles(ctx)
	if err != nil {
		return models.Profile{}, err
	}

	profile := profiles[identity]
	if avatar != "" {
		profile.Avatar = avatar
	}
	profiles[identity] = profile

	if err := s.store.SaveProfiles(ctx, profiles); err != nil {
		return models.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

// GetProfile returns nil when no profile exists for name.
func (s *ProfileService) GetProfile(ctx context.Context, name string) (*models.Profile, error) {
	profiles, err := s.store.LoadProfiles(ctx)
	if err != nil {
		return nil, err
	}
	profile, ok := profiles[name]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}
