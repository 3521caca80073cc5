package crm_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/pkg/lifecycle"
)

type fakeExchanger struct {
	mu     sync.Mutex
	calls  int32
	tokens []*crm.Token
	err    error
	block  chan struct{}
}

func (f *fakeExchanger) Exchange(ctx context.Context) (*crm.Token, error) {
	if f.block != nil {
		<-f.block
	}
	n := atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	idx := int(n) - 1
	if idx >= len(f.tokens) {
		idx = len(f.tokens) - 1
	}
	return f.tokens[idx], nil
}

func (f *fakeExchanger) count() int32 {
	return atomic.LoadInt32(&f.calls)
}

func testConfig() *crm.Config {
	cfg := &crm.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "refresh",
	}
	if err := cfg.Finalize(nil); err != nil {
		panic(err)
	}
	return cfg
}

func newManager(t *testing.T, exchanger crm.Exchanger) *crm.TokenManager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return crm.NewTokenManager(exchanger, testConfig(), logger)
}

func TestTokenRefreshesOnFirstUse(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exchanger := &fakeExchanger{tokens: []*crm.Token{
		{AccessToken: "tok-1", ExpiresAt: now.Add(time.Hour)},
	}}

	m := newManager(t, exchanger)
	m.SetClock(func() time.Time { return now })

	got, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if got != "tok-1" {
		t.Errorf("Token = %q, want tok-1", got)
	}
	if exchanger.count() != 1 {
		t.Errorf("exchange calls = %d, want 1", exchanger.count())
	}
}

func TestTokenReusesCachedToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exchanger := &fakeExchanger{tokens: []*crm.Token{
		{AccessToken: "tok-1", ExpiresAt: now.Add(time.Hour)},
	}}

	m := newManager(t, exchanger)
	m.SetClock(func() time.Time { return now })

	for range 5 {
		if _, err := m.Token(context.Background()); err != nil {
			t.Fatalf("Token error: %v", err)
		}
	}
	if exchanger.count() != 1 {
		t.Errorf("exchange calls = %d, want 1", exchanger.count())
	}
}

func TestTokenRefreshesInsideExpiryBuffer(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exchanger := &fakeExchanger{tokens: []*crm.Token{
		{AccessToken: "tok-1", ExpiresAt: start.Add(time.Hour)},
		{AccessToken: "tok-2", ExpiresAt: start.Add(2 * time.Hour)},
	}}

	now := start
	m := newManager(t, exchanger)
	m.SetClock(func() time.Time { return now })

	if _, err := m.Token(context.Background()); err != nil {
		t.Fatalf("Token error: %v", err)
	}

	// Four minutes before expiry is inside the five-minute buffer.
	now = start.Add(56 * time.Minute)

	got, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if got != "tok-2" {
		t.Errorf("Token = %q, want tok-2", got)
	}
	if exchanger.count() != 2 {
		t.Errorf("exchange calls = %d, want 2", exchanger.count())
	}
}

func TestConcurrentExpiredReadsCauseOneExchange(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exchanger := &fakeExchanger{
		tokens: []*crm.Token{
			{AccessToken: "tok-1", ExpiresAt: now.Add(time.Hour)},
		},
		block: make(chan struct{}),
	}

	m := newManager(t, exchanger)
	m.SetClock(func() time.Time { return now })

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)

	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := m.Token(context.Background())
			if err != nil {
				t.Errorf("Token error: %v", err)
				return
			}
			results[i] = tok
		}()
	}

	close(exchanger.block)
	wg.Wait()

	if exchanger.count() != 1 {
		t.Errorf("exchange calls = %d, want 1", exchanger.count())
	}
	for i, tok := range results {
		if tok != "tok-1" {
			t.Errorf("caller %d got %q, want tok-1", i, tok)
		}
	}
}

func TestTokenExchangeFailure(t *testing.T) {
	exchangeErr := errors.New("upstream rejected grant")
	exchanger := &fakeExchanger{err: exchangeErr}

	m := newManager(t, exchanger)

	if _, err := m.Token(context.Background()); !errors.Is(err, exchangeErr) {
		t.Fatalf("Token error = %v, want %v", err, exchangeErr)
	}

	status := m.Status()
	if status.Present {
		t.Error("Status.Present = true, want false")
	}
	if status.LastError == "" {
		t.Error("Status.LastError empty, want exchange failure")
	}
}

func TestStartObtainsInitialToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	exchanger := &fakeExchanger{tokens: []*crm.Token{
		{AccessToken: "tok-1", ExpiresAt: now.Add(time.Hour)},
	}}

	m := newManager(t, exchanger)
	m.SetClock(func() time.Time { return now })

	lc := lifecycle.New()
	defer lc.Shutdown(time.Second)

	if err := m.Start(lc); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if !m.Status().Present {
		t.Error("Status.Present = false after Start, want true")
	}

	got, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if got != "tok-1" {
		t.Errorf("Token = %q, want tok-1", got)
	}
	if exchanger.count() != 1 {
		t.Errorf("exchange calls = %d, want 1", exchanger.count())
	}
}

func TestStartFailsWithoutInitialToken(t *testing.T) {
	exchangeErr := errors.New("upstream rejected grant")
	exchanger := &fakeExchanger{err: exchangeErr}

	m := newManager(t, exchanger)

	lc := lifecycle.New()
	defer lc.Shutdown(time.Second)

	if err := m.Start(lc); !errors.Is(err, exchangeErr) {
		t.Fatalf("Start error = %v, want %v", err, exchangeErr)
	}
}

func TestStatusReportsTokenState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(time.Hour)
	exchanger := &fakeExchanger{tokens: []*crm.Token{
		{AccessToken: "tok-1", ExpiresAt: expires},
	}}

	m := newManager(t, exchanger)
	m.SetClock(func() time.Time { return now })

	if status := m.Status(); status.Present {
		t.Error("Status.Present = true before refresh, want false")
	}

	if _, err := m.Token(context.Background()); err != nil {
		t.Fatalf("Token error: %v", err)
	}

	status := m.Status()
	if !status.Present {
		t.Fatal("Status.Present = false after refresh, want true")
	}
	if status.ExpiresAt == nil || !status.ExpiresAt.Equal(expires) {
		t.Errorf("Status.ExpiresAt = %v, want %v", status.ExpiresAt, expires)
	}
	if status.LastRefresh == nil || !status.LastRefresh.Equal(now) {
		t.Errorf("Status.LastRefresh = %v, want %v", status.LastRefresh, now)
	}
	if status.LastError != "" {
		t.Errorf("Status.LastError = %q, want empty", status.LastError)
	}
}
