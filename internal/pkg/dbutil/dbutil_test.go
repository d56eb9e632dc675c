package dbutil

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestIsConflict(t *testing.T) {
	require.True(t, IsConflict(&pq.Error{Code: "23505"}))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(errors.New("connection reset")))
	require.False(t, IsConflict(nil))
}

func TestFinalizeRebindsPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT id FROM users WHERE email=? AND provider=?", []interface{}{"a@example.com", "otp"})
	require.Equal(t, "SELECT id FROM users WHERE email=$1 AND provider=$2", query)
	require.Equal(t, []interface{}{"a@example.com", "otp"}, args)
}

func TestFinalizeRewritesLimitClause(t *testing.T) {
	query, args := Finalize("SELECT id FROM notes WHERE user_id=? ORDER BY ctime DESC LIMIT ?,?", []interface{}{"u1", 20, 10})
	require.Equal(t, "SELECT id FROM notes WHERE user_id=$1 ORDER BY ctime DESC LIMIT $2 OFFSET $3", query)
	// gendry emits LIMIT offset,count; postgres wants count before offset.
	require.Equal(t, []interface{}{"u1", 10, 20}, args)
}
