package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/jotbox/jotbox/internal/handler"
	"github.com/jotbox/jotbox/internal/middleware"
	"github.com/jotbox/jotbox/internal/service"

	"github.com/jotbox/jotbox/internal/repo"
)

type noopSender struct{}

func (noopSender) Send(to, subject, body string) error {
	return nil
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repo.NewMemoryUserRepo()
	notes := repo.NewMemoryNoteRepo()
	codes := repo.NewMemoryOtpRepo()

	jwtSecret := []byte("test-secret")
	otpService := service.NewOtpService(codes, noopSender{}, 10*time.Minute, 0, 5, true)
	authService := service.NewAuthService(users, otpService, jwtSecret, time.Hour)
	oauthService := service.NewOAuthService(users, jwtSecret, time.Hour, nil)
	noteService := service.NewNoteService(notes)

	deps := handler.RouterDeps{
		Auth:             handler.NewAuthHandler(authService),
		OAuth:            handler.NewOAuthHandler(oauthService, "http://localhost:3000"),
		Notes:            handler.NewNoteHandler(noteService),
		JWTSecret:        jwtSecret,
		OTPRequestWindow: 0,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return engine
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

// signup walks the full OTP flow and returns a session token plus the user id.
func signup(t *testing.T, router http.Handler, email string) (string, string) {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/otp/request?mode=signup", "", map[string]string{
		"email":     email,
		"full_name": "Test User",
		"dob":       "1990-01-01",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	code, _ := decodeData(t, resp)["dev_otp"].(string)
	require.Len(t, code, 6)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/otp/verify?mode=signup", "", map[string]string{
		"email":     email,
		"otp":       code,
		"full_name": "Test User",
		"dob":       "1990-01-01",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeData(t, resp)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	user, _ := data["user"].(map[string]interface{})
	userID, _ := user["id"].(string)
	require.NotEmpty(t, userID)
	return token, userID
}
