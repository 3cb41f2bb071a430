package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"history-quiz-service/internal/domain"
)

// BadgeStore is a bun-backed implementation of app.BadgeStore.
type BadgeStore struct {
	db *bun.DB
}

func NewBadgeStore(db *bun.DB) *BadgeStore {
	return &BadgeStore{db: db}
}

func (s *BadgeStore) BadgeByName(ctx context.Context, name string) (domain.Badge, error) {
	var row badgeRow
	err := s.db.NewSelect().Model(&row).Where("name = ?", name).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Badge{}, domain.ErrBadgeNotFound
	}
	if err != nil {
		return domain.Badge{}, fmt.Errorf("find badge: %w", err)
	}
	return domain.Badge{ID: row.ID, Name: row.Name}, nil
}

func (s *BadgeStore) UserBadges(ctx context.Context, userID string) ([]domain.Badge, error) {
	var rows []badgeRow
	err := s.db.NewSelect().Model(&rows).
		Join("JOIN user_badges AS ub ON ub.badge_id = b.id").
		Where("ub.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	badges := make([]domain.Badge, 0, len(rows))
	for _, r := range rows {
		badges = append(badges, domain.Badge{ID: r.ID, Name: r.Name})
	}
	return badges, nil
}

// AddBadge is idempotent at the storage level too: a concurrent duplicate
// grant hits the primary key and is dropped.
func (s *BadgeStore) AddBadge(ctx context.Context, userID string, badge domain.Badge) error {
	row := userBadgeRow{UserID: userID, BadgeID: badge.ID}
	if _, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (user_id, badge_id) DO NOTHING").
		Exec(ctx); err != nil {
		return fmt.Errorf("add badge: %w", err)
	}
	return nil
}

// InsertBadge registers a catalog entry; used by seeding and tests.
func (s *BadgeStore) InsertBadge(ctx context.Context, badge domain.Badge) error {
	row := badgeRow{ID: badge.ID, Name: badge.Name}
	if _, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx); err != nil {
		return fmt.Errorf("insert badge: %w", err)
	}
	return nil
}
