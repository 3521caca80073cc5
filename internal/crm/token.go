package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tbdc/leadscope/pkg/lifecycle"
)

// Token is an access token issued by the CRM authorization server.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// TokenStatus reports token health without exposing the token itself.
type TokenStatus struct {
	Present     bool       `json:"present"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// Exchanger trades a long-lived refresh token for a short-lived access token.
type Exchanger interface {
	Exchange(ctx context.Context) (*Token, error)
}

// TokenSource supplies valid access tokens to API callers.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Status() TokenStatus
}

// TokenManager caches an access token and refreshes it ahead of expiry.
// Reads take a shared lock only; the refresh path is serialized so that
// concurrent callers hitting an expired token trigger a single upstream
// exchange.
type TokenManager struct {
	exchanger Exchanger
	logger    *slog.Logger
	buffer    time.Duration
	retry     time.Duration
	now       func() time.Time

	mu          sync.RWMutex
	token       *Token
	lastRefresh time.Time
	lastError   error

	refreshMu sync.Mutex
}

// NewTokenManager creates a TokenManager over the given exchanger.
func NewTokenManager(exchanger Exchanger, cfg *Config, logger *slog.Logger) *TokenManager {
	return &TokenManager{
		exchanger: exchanger,
		logger:    logger.With("system", "crm-tokens"),
		buffer:    cfg.RefreshBufferDuration(),
		retry:     cfg.RetryIntervalDuration(),
		now:       time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (m *TokenManager) SetClock(now func() time.Time) {
	m.now = now
}

// Token returns a valid access token, refreshing first when the cached
// token is missing or inside the expiry buffer.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if tok := m.current(); tok != nil {
		return tok.AccessToken, nil
	}

	tok, err := m.refresh(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Status reports the current token state.
func (m *TokenManager) Status() TokenStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := TokenStatus{Present: m.token != nil}
	if m.token != nil {
		expires := m.token.ExpiresAt
		status.ExpiresAt = &expires
	}
	if !m.lastRefresh.IsZero() {
		refreshed := m.lastRefresh
		status.LastRefresh = &refreshed
	}
	if m.lastError != nil {
		status.LastError = m.lastError.Error()
	}
	return status
}

// Start performs the initial token exchange and registers the background
// refresh loop with the lifecycle coordinator. Nothing works against the
// CRM without a token, so a failed first exchange aborts startup. The
// loop then refreshes ahead of expiry and, on later failures, keeps
// retrying at the configured interval until shutdown cancels it.
func (m *TokenManager) Start(lc *lifecycle.Coordinator) error {
	if _, err := m.refresh(lc.Context()); err != nil {
		return fmt.Errorf("initial token refresh: %w", err)
	}
	lc.OnStartup(func() {
		go m.run(lc.Context())
	})
	return nil
}

func (m *TokenManager) run(ctx context.Context) {
	for {
		wait := m.retry
		if tok := m.current(); tok != nil {
			wait = tok.ExpiresAt.Add(-m.buffer).Sub(m.now())
		} else if _, err := m.refresh(ctx); err != nil {
			m.logger.Warn("token refresh failed, retrying", "error", err, "retry_in", m.retry)
		} else {
			continue
		}

		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// current returns the cached token when it is still outside the expiry
// buffer, nil otherwise.
func (m *TokenManager) current() *Token {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == nil {
		return nil
	}
	if m.now().After(m.token.ExpiresAt.Add(-m.buffer)) {
		return nil
	}
	return m.token
}

func (m *TokenManager) refresh(ctx context.Context) (*Token, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	// Another caller may have refreshed while this one waited on the lock.
	if tok := m.current(); tok != nil {
		return tok, nil
	}

	tok, err := m.exchanger.Exchange(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.lastError = err
		return nil, err
	}

	m.token = tok
	m.lastRefresh = m.now()
	m.lastError = nil
	m.logger.Info("access token refreshed", "expires_at", tok.ExpiresAt)
	return tok, nil
}

// oauthExchanger implements Exchanger against the CRM accounts endpoint.
type oauthExchanger struct {
	cfg    *Config
	client *http.Client
	now    func() time.Time
}

// NewExchanger creates an Exchanger that performs the refresh token grant
// against the configured accounts URL.
func NewExchanger(cfg *Config) Exchanger {
	return &oauthExchanger{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeoutDuration()},
		now:    time.Now,
	}
}

func (e *oauthExchanger) Exchange(ctx context.Context) (*Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {e.cfg.ClientID},
		"client_secret": {e.cfg.ClientSecret},
		"refresh_token": {e.cfg.RefreshToken},
	}

	endpoint := strings.TrimRight(e.cfg.AccountsURL, "/") + "/oauth/v2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrTokenExchange, res.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrTokenExchange, payload.Error)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}

	return &Token{
		AccessToken: payload.AccessToken,
		ExpiresAt:   e.now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}
