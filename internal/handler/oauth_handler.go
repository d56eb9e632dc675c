package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
	"github.com/jotbox/jotbox/internal/pkg/response"
	"github.com/jotbox/jotbox/internal/service"
)

const oauthStateTTL = 10 * time.Minute

type OAuthHandler struct {
	oauth      *service.OAuthService
	appURL     string
	stateStore *oauthStateStore
}

func NewOAuthHandler(oauth *service.OAuthService, appURL string) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, appURL: strings.TrimRight(appURL, "/"), stateStore: newOAuthStateStore()}
}

func (h *OAuthHandler) AuthURL(c *gin.Context) {
	provider := strings.ToLower(c.Param("provider"))
	state := h.stateStore.Create(provider)
	authURL, err := h.oauth.GetAuthURL(provider, state)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"url": authURL})
}

// Callback finishes the handshake and redirects back to the app with the
// session token in the URL fragment so it stays out of server logs.
func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		h.redirectError(c, "invalid")
		return
	}
	provider, ok := h.stateStore.Consume(state)
	if !ok || provider != strings.ToLower(c.Param("provider")) {
		h.redirectError(c, "invalid")
		return
	}
	profile, err := h.oauth.ExchangeCode(c.Request.Context(), provider, code)
	if err != nil {
		h.redirectError(c, mapOAuthError(err))
		return
	}
	_, token, err := h.oauth.LoginOrCreate(c.Request.Context(), profile)
	if err != nil {
		h.redirectError(c, mapOAuthError(err))
		return
	}
	c.Redirect(http.StatusFound, h.appURL+"/oauth/callback#token="+url.QueryEscape(token))
}

func (h *OAuthHandler) redirectError(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, h.appURL+"/signin?error="+url.QueryEscape(code))
}

func mapOAuthError(err error) string {
	switch err {
	case appErr.ErrInvalid:
		return "invalid"
	case appErr.ErrConflict:
		return "conflict"
	default:
		return "oauth_failed"
	}
}

type oauthState struct {
	provider  string
	expiresAt time.Time
}

type oauthStateStore struct {
	mu     sync.Mutex
	states map[string]oauthState
}

func newOAuthStateStore() *oauthStateStore {
	return &oauthStateStore{states: make(map[string]oauthState)}
}

func (s *oauthStateStore) Create(provider string) string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	state := hex.EncodeToString(buf)
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range s.states {
		if value.expiresAt.Before(now) {
			delete(s.states, key)
		}
	}
	s.states[state] = oauthState{provider: provider, expiresAt: now.Add(oauthStateTTL)}
	return state
}

func (s *oauthStateStore) Consume(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.states[state]
	if !ok {
		return "", false
	}
	delete(s.states, state)
	if value.expiresAt.Before(time.Now()) {
		return "", false
	}
	return value.provider, true
}
