package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/niveshpath/client/src/api"
	"github.com/niveshpath/client/src/logger"
	"github.com/niveshpath/client/src/models"
	"github.com/niveshpath/client/src/storage"
	"golang.org/x/oauth2"
)

var (
	// ErrSessionExpired is surfaced when a stored credential is rejected
	// during restoration. The credential has already been cleared by then.
	ErrSessionExpired = errors.New("your session has expired, please login again")

	// ErrStaleResponse marks a network completion that lost the race with a
	// newer login/logout and was discarded instead of applied.
	ErrStaleResponse = errors.New("response superseded by a newer session change")
)

// Manager is the single source of truth for "who is logged in". It owns the
// in-memory user record, the persisted credential, and the locally persisted
// onboarding flag. Constructed once at process start; Logout is its teardown.
type Manager struct {
	client *api.Client
	store  *storage.Store

	mu             sync.Mutex
	currentUser    *models.User
	loading        bool
	onboardingDone bool

	// generation increments on every login/register/logout/restore entry.
	// A network completion tagged with an older generation is discarded, so
	// a slow response can never overwrite state the user has since changed.
	generation uint64
}

func NewManager(client *api.Client, store *storage.Store) *Manager {
	return &Manager{client: client, store: store}
}

// TokenSource adapts the persisted credential to oauth2.TokenSource so the
// API client injects it as a bearer token on authenticated requests.
func TokenSource(store *storage.Store) oauth2.TokenSource {
	return &storeTokenSource{store: store}
}

type storeTokenSource struct {
	store *storage.Store
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.store.Token()
	if errors.Is(err, storage.ErrNotFound) {
		return nil, api.ErrNoCredential
	}
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: token}, nil
}

// begin opens a new session transition and returns its generation. Any
// in-flight completion from an earlier generation becomes stale.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	return m.generation
}

// Login exchanges credentials for a session. Backend errors propagate
// untouched; nothing is retried.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	gen := m.begin()

	resp, err := m.client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return m.establish(gen, resp)
}

// Register creates an account and establishes the session, same contract as
// Login.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	gen := m.begin()

	resp, err := m.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.establish(gen, resp)
}

func (m *Manager) establish(gen uint64, resp *models.AuthResponse) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return nil, ErrStaleResponse
	}
	if err := m.store.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to persist credential: %w", err)
	}
	user := resp.User
	m.currentUser = &user
	return &user, nil
}

// Logout clears the credential and user record unconditionally. Idempotent.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.currentUser = nil
	if err := m.store.DeleteToken(); err != nil {
		logger.L.Warn("Failed to delete stored credential on logout", "error", err)
	}
}

// Restore rebuilds the session from the persisted credential. Run once at
// startup; Loading reports true only while it runs. With no stored credential
// it returns immediately without any network call. A rejected credential is
// deleted and reported as ErrSessionExpired.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	_, err := m.store.Token()
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read stored credential: %w", err)
	}

	user, err := m.client.CurrentUser(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return ErrStaleResponse
	}
	if err != nil {
		logger.L.Warn("Session restoration failed, clearing stored credential", "error", err)
		if delErr := m.store.DeleteToken(); delErr != nil {
			logger.L.Warn("Failed to delete rejected credential", "error", delErr)
		}
		m.currentUser = nil
		return fmt.Errorf("%w (%v)", ErrSessionExpired, err)
	}

	m.currentUser = user
	m.onboardingDone = m.store.OnboardingCompleted()
	return nil
}

// Loading reports whether session restoration is still in progress. Consumers
// must not act on CurrentUser until this is false.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// CurrentUser returns the signed-in user record, or nil.
func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentUser
}

// IsAuthenticated is derived: true iff a user record is present.
func (m *Manager) IsAuthenticated() bool {
	return m.CurrentUser() != nil
}

// UpdateOnboardingStatus sets and persists the onboarding flag locally. No
// backend round-trip: the status endpoint is unreliable, so the local flag is
// the authoritative record.
func (m *Manager) UpdateOnboardingStatus(done bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onboardingDone = done
	return m.store.SetOnboardingCompleted(done)
}

// OnboardingCompleted resolves the two sources of truth for onboarding
// status: the local flag wins unless a successful backend read returns true,
// which is then persisted locally. A backend false or error never clears a
// local true.
func (m *Manager) OnboardingCompleted(ctx context.Context) bool {
	m.mu.Lock()
	done := m.onboardingDone
	authed := m.currentUser != nil
	m.mu.Unlock()

	if done || !authed {
		return done
	}

	completed, err := m.client.OnboardingStatus(ctx)
	if err != nil {
		logger.L.Debug("Onboarding status endpoint unavailable, trusting local flag", "error", err)
		return false
	}
	if completed {
		if err := m.UpdateOnboardingStatus(true); err != nil {
			logger.L.Warn("Failed to persist onboarding flag from backend", "error", err)
		}
		return true
	}
	return false
}

// TokenExpiry inspects the stored credential's exp claim without verifying
// the signature (the client has no key material; this is display metadata
// only). Opaque or absent tokens report ok=false.
func (m *Manager) TokenExpiry() (time.Time, bool) {
	token, err := m.store.Token()
	if err != nil {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
