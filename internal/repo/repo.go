package repo

import (
	"context"

	"github.com/jotbox/jotbox/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	UpdateLastProvider(ctx context.Context, userID, provider string, mtime int64) error
}

type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	ListByUser(ctx context.Context, userID string) ([]model.Note, error)
	// DeleteByUser removes the note only when it belongs to userID and
	// reports ErrNotFound otherwise.
	DeleteByUser(ctx context.Context, userID, noteID string) error
}

type OtpRepository interface {
	// Save replaces any pending code for the email.
	Save(ctx context.Context, code *model.OtpCode) error
	GetByEmail(ctx context.Context, email string) (*model.OtpCode, error)
	// IncrementAttempts bumps the attempt counter of the identified pending
	// code and returns the new count.
	IncrementAttempts(ctx context.Context, email, id string) (int, error)
	// Consume deletes the pending code only if the identified one is still
	// current, so a code cannot be spent twice.
	Consume(ctx context.Context, email, id string) error
}
