package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoteLifecycle(t *testing.T) {
	router := setupRouter(t)
	token, userID := signup(t, router, "notes@example.com")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/notes", token, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, resp.Code)
	note, _ := decodeData(t, resp)["note"].(map[string]interface{})
	noteID, _ := note["id"].(string)
	require.NotEmpty(t, noteID)
	require.Equal(t, userID, note["user_id"])

	resp = doJSON(t, router, http.MethodGet, "/api/v1/notes", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	notes, _ := decodeData(t, resp)["notes"].([]interface{})
	require.Len(t, notes, 1)
	first, _ := notes[0].(map[string]interface{})
	require.Equal(t, "hello", first["text"])

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/notes/"+noteID, token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/notes", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	notes, _ = decodeData(t, resp)["notes"].([]interface{})
	require.Len(t, notes, 0)
}

func TestNoteValidation(t *testing.T) {
	router := setupRouter(t)
	token, _ := signup(t, router, "bounds@example.com")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/notes", token, map[string]string{"text": ""})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/notes", token, map[string]string{"text": strings.Repeat("x", 1001)})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestNoteDeleteByNonOwnerIsNotFound(t *testing.T) {
	router := setupRouter(t)
	ownerToken, _ := signup(t, router, "owner@example.com")
	otherToken, _ := signup(t, router, "other@example.com")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/notes", ownerToken, map[string]string{"text": "mine"})
	require.Equal(t, http.StatusOK, resp.Code)
	note, _ := decodeData(t, resp)["note"].(map[string]interface{})
	noteID, _ := note["id"].(string)

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/notes/"+noteID, otherToken, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	// The owner's list is unchanged.
	resp = doJSON(t, router, http.MethodGet, "/api/v1/notes", ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	notes, _ := decodeData(t, resp)["notes"].([]interface{})
	require.Len(t, notes, 1)
}

func TestNotesRequireAuth(t *testing.T) {
	router := setupRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/notes", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
