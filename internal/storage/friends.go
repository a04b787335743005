package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AreFriends reports whether an accepted friendship exists between the two
// users, in either direction.
func (db *DB) AreFriends(ctx context.Context, a, b int) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friends
			WHERE status = 'accepted'
			  AND ((requester_id = $1 AND recipient_id = $2)
			    OR (requester_id = $2 AND recipient_id = $1))
		)
	`, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return exists, nil
}

// canView decides whether a viewer may see an owner's data, looking up the
// friendship only when the visibility actually requires it. viewerID 0 means
// anonymous. The same gate applies to routines and sessions.
func (db *DB) canView(ctx context.Context, ownerID int, visibility models.Visibility, viewerID int) (bool, error) {
	if visibility == models.VisibilityFriends && viewerID != 0 && viewerID != ownerID {
		friended, err := db.AreFriends(ctx, viewerID, ownerID)
		if err != nil {
			return false, err
		}
		return models.CanView(ownerID, visibility, viewerID, friended), nil
	}
	return models.CanView(ownerID, visibility, viewerID, false), nil
}

// SendFriendRequest creates a pending request from requester to recipient.
// Re-sending over an existing row is a no-op that returns the existing record.
func (db *DB) SendFriendRequest(ctx context.Context, requesterID, recipientID int) (*models.Friend, error) {
	if requesterID == recipientID {
		return nil, fmt.Errorf("%w: cannot befriend yourself", models.ErrInvalidState)
	}
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO friends (id, requester_id, recipient_id, status)
		VALUES ($1, $2, $3, 'pending')
		ON CONFLICT (requester_id, recipient_id) DO UPDATE SET requester_id = friends.requester_id
		RETURNING id, requester_id, recipient_id, status, created_at, updated_at
	`, uuid.New(), requesterID, recipientID)
	return scanFriend(row)
}

// RespondFriendRequest lets the recipient accept or block a pending request.
func (db *DB) RespondFriendRequest(ctx context.Context, recipientID int, friendID uuid.UUID, status models.FriendStatus) (*models.Friend, error) {
	if status != models.FriendAccepted && status != models.FriendBlocked {
		return nil, fmt.Errorf("%w: response must be accepted or blocked", models.ErrInvalidState)
	}
	row := db.Pool.QueryRow(ctx, `
		UPDATE friends SET status = $3, updated_at = NOW()
		WHERE id = $1 AND recipient_id = $2
		RETURNING id, requester_id, recipient_id, status, created_at, updated_at
	`, friendID, recipientID, status)
	f, err := scanFriend(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return f, err
}

// ListFriends returns all friend records involving the user, optionally
// filtered by status.
func (db *DB) ListFriends(ctx context.Context, userID int, status *models.FriendStatus) ([]models.Friend, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, requester_id, recipient_id, status, created_at, updated_at
		FROM friends
		WHERE (requester_id = $1 OR recipient_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY updated_at DESC
	`, userID, status)
	if err != nil {
		return nil, fmt.Errorf("querying friends: %w", err)
	}
	defer rows.Close()

	var result []models.Friend
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.ID, &f.RequesterID, &f.RecipientID, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// friendIDs returns the user IDs of all accepted friends.
func (db *DB) friendIDs(ctx context.Context, userID int) ([]int, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT CASE WHEN requester_id = $1 THEN recipient_id ELSE requester_id END
		FROM friends
		WHERE status = 'accepted' AND (requester_id = $1 OR recipient_id = $1)
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying friend ids: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning friend id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanFriend(row pgx.Row) (*models.Friend, error) {
	var f models.Friend
	if err := row.Scan(&f.ID, &f.RequesterID, &f.RecipientID, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning friend: %w", err)
	}
	return &f, nil
}
