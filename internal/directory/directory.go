// Package directory implements speaker identity resolution over the users
// and agents tables.
package directory

import (
	"context"
	"fmt"

	"github.com/huddleai/huddle/internal/models"
	"gorm.io/gorm"
)

// Store resolves speaker ids against both identity stores: human users and
// AI agents. A meeting transcript mixes the two, so lookups union them.
type Store struct {
	db *gorm.DB
}

// NewStore creates a directory store backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DisplayNames returns a map from speaker id to display name for every id
// that matches a user or an agent. Ids with no match are simply absent from
// the result.
func (s *Store) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}

	var agents []models.Agent
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	for _, a := range agents {
		names[a.ID] = a.Name
	}

	return names, nil
}
