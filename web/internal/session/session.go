package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	// SessionName is the name of the session cookie
	SessionName = "chirp_session"

	// TokenKey is the session key for storing the provider session token
	TokenKey = "token"
)

// Manager wraps gorilla/sessions for our use case
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a new session manager.
// secretKey should be 32 bytes.
func NewManager(secretKey []byte, secure bool) *Manager {
	store := sessions.NewCookieStore(secretKey)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		store: store,
	}
}

// SetToken stores the session token
func (m *Manager) SetToken(r *http.Request, w http.ResponseWriter, token string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		// Undecodable cookie (e.g. rotated secret): start over
		session, _ = m.store.New(r, SessionName)
	}

	session.Values[TokenKey] = token
	return session.Save(r, w)
}

// GetToken retrieves the session token
func (m *Manager) GetToken(r *http.Request) (string, error) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return "", err
	}

	token, ok := session.Values[TokenKey].(string)
	if !ok || token == "" {
		return "", ErrNoToken
	}

	return token, nil
}

// ClearToken removes the session (logout)
func (m *Manager) ClearToken(r *http.Request, w http.ResponseWriter) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		session, _ = m.store.New(r, SessionName)
	}

	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// HasToken checks if a session token exists
func (m *Manager) HasToken(r *http.Request) bool {
	_, err := m.GetToken(r)
	return err == nil
}
