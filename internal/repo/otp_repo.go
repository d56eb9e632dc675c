package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/jotbox/jotbox/internal/model"
	"github.com/jotbox/jotbox/internal/pkg/dbutil"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
)

type OtpRepo struct {
	db *sql.DB
}

func NewOtpRepo(db *sql.DB) *OtpRepo {
	return &OtpRepo{db: db}
}

func (r *OtpRepo) Save(ctx context.Context, code *model.OtpCode) error {
	data := map[string]interface{}{
		"id":         code.ID,
		"email":      code.Email,
		"code_hash":  code.CodeHash,
		"attempts":   code.Attempts,
		"ctime":      code.Ctime,
		"expires_at": code.ExpiresAt,
	}
	sqlStr, args, err := builder.BuildInsert("otp_codes", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	// Last write wins on the pending code for an email.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	delStr, delArgs, err := builder.BuildDelete("otp_codes", map[string]interface{}{"email": code.Email})
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	delStr, delArgs = dbutil.Finalize(delStr, delArgs)
	if _, err := tx.ExecContext(ctx, delStr, delArgs...); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		_ = tx.Rollback()
		// Two concurrent issues for the same email can race the
		// delete+insert; the loser surfaces as a retryable conflict.
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return tx.Commit()
}

func (r *OtpRepo) GetByEmail(ctx context.Context, email string) (*model.OtpCode, error) {
	where := map[string]interface{}{"email": email}
	sqlStr, args, err := builder.BuildSelect("otp_codes", where, []string{"id", "email", "code_hash", "attempts", "ctime", "expires_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var code model.OtpCode
	if err := rows.Scan(&code.ID, &code.Email, &code.CodeHash, &code.Attempts, &code.Ctime, &code.ExpiresAt); err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *OtpRepo) IncrementAttempts(ctx context.Context, email, id string) (int, error) {
	var attempts int
	err := r.db.QueryRowContext(ctx,
		"UPDATE otp_codes SET attempts = attempts + 1 WHERE email = $1 AND id = $2 RETURNING attempts",
		email, id).Scan(&attempts)
	if err == sql.ErrNoRows {
		return 0, appErr.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return attempts, nil
}

func (r *OtpRepo) Consume(ctx context.Context, email, id string) error {
	where := map[string]interface{}{"email": email, "id": id}
	sqlStr, args, err := builder.BuildDelete("otp_codes", where)
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
