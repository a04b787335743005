package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetOrCreateUser finds or creates a user by login name (the Tailscale login
// in tsnet mode). Returns the user ID. Updates last_seen and display_name on
// each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user: %w", err)
	}
	return id, nil
}

// LookupUserByLogin returns the user ID for a login, or ErrNotFound.
func (db *DB) LookupUserByLogin(ctx context.Context, login string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `SELECT id FROM users WHERE login = $1`, login).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("looking up user: %w", err)
	}
	return id, nil
}

// GetProfile returns the user's profile, creating an empty one if absent.
func (db *DB) GetProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = user_profiles.user_id
		RETURNING user_id, bio, total_workouts, total_workout_ms, units,
		          onboarding_completed, created_at, updated_at
	`, userID)

	var p models.UserProfile
	var totalMs int64
	if err := row.Scan(&p.UserID, &p.Bio, &p.TotalWorkouts, &totalMs, &p.Units,
		&p.OnboardingCompleted, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	p.TotalWorkoutTime = time.Duration(totalMs) * time.Millisecond
	return &p, nil
}

// UpdateProfile applies a partial profile update for the owner.
func (db *DB) UpdateProfile(ctx context.Context, userID int, bio, units *string, onboardingCompleted *bool) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE user_profiles SET
			bio = COALESCE($2, bio),
			units = COALESCE($3, units),
			onboarding_completed = COALESCE($4, onboarding_completed),
			updated_at = NOW()
		WHERE user_id = $1
	`, userID, bio, units, onboardingCompleted)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
