package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-videotube/internal/model"
)

type ChannelRepository struct {
	pool *pgxpool.Pool
}

func NewChannelRepository(pool *pgxpool.Pool) *ChannelRepository {
	return &ChannelRepository{pool: pool}
}

// Profile aggregates a channel and its subscription counts in one query.
// IsSubscribed is computed relative to viewerID.
func (r *ChannelRepository) Profile(ctx context.Context, username string, viewerID string) (model.ChannelProfile, error) {
	var p model.ChannelProfile
	err := r.pool.QueryRow(ctx,
		`SELECT u.id, u.username, u.full_name, u.avatar, u.cover_image,
		        (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
		        (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
		        EXISTS(SELECT 1 FROM subscriptions s
		               WHERE s.channel_id = u.id AND s.subscriber_id::text = $2)
		 FROM users u
		 WHERE u.username = $1`,
		strings.ToLower(strings.TrimSpace(username)), viewerID).
		Scan(&p.ID, &p.Username, &p.FullName, &p.Avatar, &p.CoverImage,
			&p.SubscriberCount, &p.SubscribedToCount, &p.IsSubscribed)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ChannelProfile{}, model.ErrChannelNotFound
	}
	if err != nil {
		return model.ChannelProfile{}, fmt.Errorf("channel profile: %w", err)
	}
	return p, nil
}

func (r *ChannelRepository) Subscribe(ctx context.Context, subscriberID string, channelID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO subscriptions (subscriber_id, channel_id)
		 VALUES ($1, $2)
		 ON CONFLICT (subscriber_id, channel_id) DO NOTHING`,
		subscriberID, channelID)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func (r *ChannelRepository) Unsubscribe(ctx context.Context, subscriberID string, channelID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		subscriberID, channelID)
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}
