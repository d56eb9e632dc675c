package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/jotbox/jotbox/internal/model"
	"github.com/jotbox/jotbox/internal/pkg/dbutil"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
)

type NoteRepo struct {
	db *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

func (r *NoteRepo) Create(ctx context.Context, note *model.Note) error {
	data := map[string]interface{}{
		"id":      note.ID,
		"user_id": note.UserID,
		"text":    note.Text,
		"ctime":   note.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("notes", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *NoteRepo) ListByUser(ctx context.Context, userID string) ([]model.Note, error) {
	where := map[string]interface{}{"user_id": userID, "_orderby": "ctime desc, id desc"}
	sqlStr, args, err := builder.BuildSelect("notes", where, []string{"id", "user_id", "text", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	notes := make([]model.Note, 0)
	for rows.Next() {
		var note model.Note
		if err := rows.Scan(&note.ID, &note.UserID, &note.Text, &note.Ctime); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *NoteRepo) DeleteByUser(ctx context.Context, userID, noteID string) error {
	where := map[string]interface{}{"id": noteID, "user_id": userID}
	sqlStr, args, err := builder.BuildDelete("notes", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
