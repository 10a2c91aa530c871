package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"zennote/apperr"
	"zennote/models"
)

var ErrNoteNotFound = apperr.NotFound("Note not found")

const noteColumns = "id, user_id, title, description, tag, created_at"

// NoteStore persists notes. Every mutating statement is also scoped by owner.
type NoteStore struct {
	db  DBTX
	now func() time.Time
}

func NewNoteStore(db DBTX) *NoteStore {
	return &NoteStore{db: db, now: time.Now}
}

// WithClock replaces the time source used for created_at.
func (s *NoteStore) WithClock(now func() time.Time) *NoteStore {
	s.now = now
	return s
}

// ListByOwner returns userID's notes newest first. The slice is never nil.
func (s *NoteStore) ListByOwner(ctx context.Context, userID string) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Description, &n.Tag, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

// Create inserts n, filling ID, CreatedAt and the default tag.
func (s *NoteStore) Create(ctx context.Context, n *models.Note) error {
	n.ID = uuid.NewString()
	n.CreatedAt = s.now().UTC().Truncate(time.Microsecond)
	if n.Tag == "" {
		n.Tag = models.DefaultTag
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		n.ID, n.UserID, n.Title, n.Description, n.Tag, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *NoteStore) Get(ctx context.Context, id string) (*models.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNoteNotFound
	}
	var n models.Note
	err := s.db.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes WHERE id = ?", id).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Description, &n.Tag, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("select note: %w", err)
	}
	return &n, nil
}

// Update writes the mutable fields of n. It matches on both id and owner.
func (s *NoteStore) Update(ctx context.Context, n *models.Note) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notes SET title = ?, description = ?, tag = ? WHERE id = ? AND user_id = ?",
		n.Title, n.Description, n.Tag, n.ID, n.UserID)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return requireAffected(res)
}

func (s *NoteStore) Delete(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
