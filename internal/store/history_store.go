package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Akshith040/EcoScan1/internal/db"
	"github.com/Akshith040/EcoScan1/internal/domain"
)

const historyColumns = `id, user_id, image_key, mime_type, image_url, waste_type, confidence, details,
	user_description, recycling_instructions, created_at`

type HistoryStore struct {
	db *db.DB
}

func NewHistoryStore(d *db.DB) *HistoryStore {
	return &HistoryStore{db: d}
}

// Create stores a copy of entry. ID and CreatedAt are filled in when empty.
func (s *HistoryStore) Create(ctx context.Context, entry *domain.HistoryEntry) (*domain.HistoryEntry, error) {
	e := *entry
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO history_entries (`+historyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), e.ID, e.UserID, e.ImageKey, e.MimeType, e.ImageURL, e.WasteType, e.Confidence, e.Details,
		e.UserDescription, e.RecyclingInstructions, e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create history entry: %w", err)
	}

	return &e, nil
}

// ListByUser returns the user's entries, newest first.
func (s *HistoryStore) ListByUser(ctx context.Context, userID string) ([]*domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(`
		SELECT `+historyColumns+` FROM history_entries
		WHERE user_id = ? ORDER BY created_at DESC, id DESC
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	entries := make([]*domain.HistoryEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}

// GetForUser returns the entry only if it belongs to userID.
func (s *HistoryStore) GetForUser(ctx context.Context, userID, id string) (*domain.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT `+historyColumns+` FROM history_entries WHERE id = ? AND user_id = ?
	`), id, userID)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*domain.HistoryEntry, error) {
	e := &domain.HistoryEntry{}
	err := sc.Scan(&e.ID, &e.UserID, &e.ImageKey, &e.MimeType, &e.ImageURL, &e.WasteType, &e.Confidence,
		&e.Details, &e.UserDescription, &e.RecyclingInstructions, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}
