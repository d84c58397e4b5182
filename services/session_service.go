package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"caravan-share/apiclient"
	"caravan-share/models"
)

const defaultLoginFailure = "Failed to log in"

// SessionStore tracks one visitor's identity. The authentication cookie
// lives in the store's API client jar and is never read directly.
type SessionStore struct {
	logoutPath string

	initOnce sync.Once

	mu       sync.RWMutex
	api      *apiclient.Client
	identity *models.Identity
}

// NewSessionStore wraps api, which must not be shared with another store.
// logoutPath is the backend endpoint that invalidates the session cookie;
// empty means the backend offers none.
func NewSessionStore(api *apiclient.Client, logoutPath string) *SessionStore {
	return &SessionStore{api: api, logoutPath: strings.TrimSpace(logoutPath)}
}

// Init loads the identity once per store. A transport failure is logged and
// leaves the visitor unauthenticated.
func (s *SessionStore) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		if _, err := s.CurrentIdentity(ctx); err != nil {
			log.Printf("session init: identity unavailable: %v", err)
		}
	})
}

// Client returns the API client carrying this session's cookies.
func (s *SessionStore) Client() *apiclient.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api
}

// Identity returns the last known identity without network I/O.
func (s *SessionStore) Identity() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}

func (s *SessionStore) setIdentity(id *models.Identity) {
	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
}

// CurrentIdentity asks the backend who the cookie belongs to. A non-2xx
// answer means unauthenticated and returns (nil, nil). Only transport
// failures return an error.
func (s *SessionStore) CurrentIdentity(ctx context.Context) (*models.Identity, error) {
	var me models.Identity
	err := s.Client().GetJSON(ctx, apiclient.PathCurrentUser, nil, &me)
	if err != nil {
		s.setIdentity(nil)
		if apiclient.StatusCode(err) != 0 {
			return nil, nil
		}
		return nil, err
	}

	s.setIdentity(&me)
	cp := me
	return &cp, nil
}

// Login exchanges credentials for the backend's session cookie and then
// performs its own confirmation read of the identity. It returns only after
// that read, so a caller never sees a login that the backend has not
// confirmed. A rejected login returns *AuthenticationError and leaves the
// stored identity unchanged.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &AuthenticationError{Message: "Email and password are required."}
	}

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	if err := s.Client().PostForm(ctx, apiclient.PathAuthToken, form, nil); err != nil {
		if apiclient.StatusCode(err) == 0 {
			return nil, err
		}
		msg, ok := apiclient.Detail(err)
		if !ok {
			msg = defaultLoginFailure
		}
		return nil, &AuthenticationError{Message: msg, Err: err}
	}

	id, err := s.CurrentIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("services: confirm login: %w", err)
	}
	if id == nil {
		return nil, &AuthenticationError{Message: defaultLoginFailure, Err: errLoginNotConfirmed}
	}
	return id, nil
}

// Logout clears the identity and drops the local cookie jar. When no backend
// logout endpoint is configured, or calling it fails, the session cookie may
// still be valid server-side and *IncompleteLogoutError is returned.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.identity = nil
	api := s.api
	s.mu.Unlock()

	var backendErr error
	if s.logoutPath != "" {
		backendErr = api.PostJSON(ctx, s.logoutPath, nil, nil)
	}

	fresh, err := api.Fork()
	if err != nil {
		return &IncompleteLogoutError{Err: errors.Join(backendErr, err)}
	}
	s.mu.Lock()
	s.api = fresh
	s.mu.Unlock()

	if s.logoutPath == "" {
		return &IncompleteLogoutError{}
	}
	if backendErr != nil {
		return &IncompleteLogoutError{Err: backendErr}
	}
	return nil
}

// GoogleAuthURL fetches the OAuth redirect URL the browser should follow.
func (s *SessionStore) GoogleAuthURL(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := s.Client().GetJSON(ctx, apiclient.PathGoogleAuthURL, nil, &out); err != nil {
		return "", asTransport("GET", apiclient.PathGoogleAuthURL, err)
	}
	if strings.TrimSpace(out.URL) == "" {
		return "", &apiclient.TransportError{
			Method: "GET",
			Path:   apiclient.PathGoogleAuthURL,
			Err:    errors.New("empty redirect url"),
		}
	}
	return out.URL, nil
}

// asTransport reports any read failure as a *TransportError, keeping the
// original error reachable through Unwrap.
func asTransport(method, path string, err error) error {
	if err == nil || apiclient.IsTransport(err) {
		return err
	}
	return &apiclient.TransportError{Method: method, Path: path, Err: err}
}
