package service

import (
	"context"
	"unicode/utf8"

	"github.com/jotbox/jotbox/internal/model"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
	"github.com/jotbox/jotbox/internal/pkg/timeutil"
	"github.com/jotbox/jotbox/internal/repo"
)

const noteMaxChars = 1000

type NoteService struct {
	notes repo.NoteRepository
}

func NewNoteService(notes repo.NoteRepository) *NoteService {
	return &NoteService{notes: notes}
}

func (s *NoteService) Create(ctx context.Context, userID, text string) (*model.Note, error) {
	if text == "" || utf8.RuneCountInString(text) > noteMaxChars {
		return nil, appErr.ErrInvalid
	}
	note := &model.Note{
		ID:     newID(),
		UserID: userID,
		Text:   text,
		Ctime:  timeutil.NowUnix(),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) List(ctx context.Context, userID string) ([]model.Note, error) {
	return s.notes.ListByUser(ctx, userID)
}

// Delete reports not-found for both absent and non-owned notes so callers
// cannot probe for other users' note ids.
func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	return s.notes.DeleteByUser(ctx, userID, noteID)
}
