package goCred

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DrStellar9/goCred/internal/stores"
	"github.com/DrStellar9/goCred/jwt"
	"github.com/DrStellar9/goCred/password"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Session.Secret = []byte("test-secret-test-secret-test-secret")
	// Lightest argon2 parameters the hasher accepts, to keep tests fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client, provider AccountProvider, mailer *captureMailer, cfg Config) *Engine {
	t.Helper()

	ph, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		t.Fatalf("argon2 init failed: %v", err)
	}

	jm, err := jwt.NewManager(jwt.Config{
		TokenTTL:      cfg.Session.TokenTTL,
		SigningMethod: jwt.SigningMethod(cfg.Session.SigningMethod),
		Secret:        cfg.Session.Secret,
		Issuer:        cfg.Session.Issuer,
	})
	if err != nil {
		t.Fatalf("jwt manager init failed: %v", err)
	}

	return &Engine{
		config:       cfg,
		accounts:     provider,
		otpStore:     stores.NewOtpStore(rdb, cfg.Otp.RedisPrefix),
		mailer:       mailer,
		sessions:     jm,
		passwordHash: ph,
		metrics:      NewMetrics(cfg.Metrics),
	}
}

type mockAccountProvider struct {
	mu      sync.Mutex
	byID    map[string]Account
	byEmail map[string]string
	nextID  int

	getErr    error
	createErr error
	updateErr error
}

func newMockAccountProvider() *mockAccountProvider {
	return &mockAccountProvider{
		byID:    make(map[string]Account),
		byEmail: make(map[string]string),
	}
}

func (p *mockAccountProvider) GetByEmail(_ context.Context, email string) (Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.getErr != nil {
		return Account{}, p.getErr
	}
	id, ok := p.byEmail[email]
	if !ok {
		return Account{}, ErrProviderNotFound
	}
	return p.byID[id], nil
}

func (p *mockAccountProvider) GetByID(_ context.Context, id string) (Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.getErr != nil {
		return Account{}, p.getErr
	}
	account, ok := p.byID[id]
	if !ok {
		return Account{}, ErrProviderNotFound
	}
	return account, nil
}

func (p *mockAccountProvider) Create(_ context.Context, input CreateAccountInput) (Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.createErr != nil {
		return Account{}, p.createErr
	}
	if _, exists := p.byEmail[input.Email]; exists {
		return Account{}, ErrProviderDuplicateEmail
	}

	p.nextID++
	now := time.Now().UTC()
	account := Account{
		ID:           fmt.Sprintf("acct-%03d", p.nextID),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: input.PasswordHash,
		Verified:     input.Verified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.byID[account.ID] = account
	p.byEmail[account.Email] = account.ID
	return account, nil
}

func (p *mockAccountProvider) UpdatePasswordHash(_ context.Context, id, hash string) error {
	return p.update(id, func(a *Account) { a.PasswordHash = hash })
}

func (p *mockAccountProvider) UpdatePinHash(_ context.Context, id, hash string) error {
	return p.update(id, func(a *Account) { a.PinHash = hash })
}

func (p *mockAccountProvider) MarkVerified(_ context.Context, id string) error {
	return p.update(id, func(a *Account) { a.Verified = true })
}

func (p *mockAccountProvider) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.byID[id]
	if !ok {
		return ErrProviderNotFound
	}
	delete(p.byID, id)
	delete(p.byEmail, account.Email)
	return nil
}

func (p *mockAccountProvider) update(id string, apply func(*Account)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.updateErr != nil {
		return p.updateErr
	}
	account, ok := p.byID[id]
	if !ok {
		return ErrProviderNotFound
	}
	apply(&account)
	account.UpdatedAt = time.Now().UTC()
	p.byID[id] = account
	return nil
}

func (p *mockAccountProvider) get(id string) Account {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.byID[id]
}

// captureMailer records outbound messages and extracts the plaintext code so
// tests can complete OTP flows without a real mailbox.
type captureMailer struct {
	mu       sync.Mutex
	sent     int
	lastTo   string
	lastSubj string
	lastBody string
	failErr  error
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return m.failErr
	}
	m.sent++
	m.lastTo = to
	m.lastSubj = subject
	m.lastBody = body
	return nil
}

func (m *captureMailer) lastOtp(t *testing.T) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	const marker = "code is: "
	idx := strings.Index(m.lastBody, marker)
	if idx < 0 {
		t.Fatalf("no otp marker in mail body: %q", m.lastBody)
	}
	rest := m.lastBody[idx+len(marker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		t.Fatalf("no otp digits in mail body: %q", m.lastBody)
	}
	return rest[:end]
}

func (m *captureMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

type fakeMinter struct {
	token string
	err   error
}

func (f fakeMinter) MintUserToken(string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func registerVerified(t *testing.T, e *Engine, mailer *captureMailer, email, passwordStr, username string) string {
	t.Helper()

	ctx := context.Background()
	result, err := e.Register(ctx, RegisterRequest{Email: email, Password: passwordStr, Username: username})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := e.VerifyRegistrationOtp(ctx, email, mailer.lastOtp(t)); err != nil {
		t.Fatalf("VerifyRegistrationOtp failed: %v", err)
	}
	return result.AccountID
}
