package goCred

import (
	"strings"
	"testing"
)

func TestBuildRequiresDependencies(t *testing.T) {
	_, rdb := newTestRedis(t)
	provider := newMockAccountProvider()
	mailer := &captureMailer{}
	cfg := testConfig()

	cases := []struct {
		name    string
		builder *Builder
		want    string
	}{
		{"missing redis", New().WithConfig(cfg).WithAccountProvider(provider).WithMailer(mailer), "redis"},
		{"missing provider", New().WithConfig(cfg).WithRedis(rdb).WithMailer(mailer), "provider"},
		{"missing mailer", New().WithConfig(cfg).WithRedis(rdb).WithAccountProvider(provider), "mailer"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.builder.Build()
			if err == nil {
				t.Fatal("expected build error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	_, rdb := newTestRedis(t)

	cfg := testConfig()
	cfg.Session.Secret = nil

	_, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountProvider(newMockAccountProvider()).
		WithMailer(&captureMailer{}).
		Build()
	if err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestBuildSucceedsAndRefusesReuse(t *testing.T) {
	_, rdb := newTestRedis(t)

	builder := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithAccountProvider(newMockAccountProvider()).
		WithMailer(&captureMailer{}).
		WithMetricsEnabled(true)

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if !engine.metrics.Enabled() {
		t.Fatal("metrics not enabled")
	}

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected error on builder reuse")
	}
}

func TestBuildIsolatesKeyMaterial(t *testing.T) {
	_, rdb := newTestRedis(t)

	cfg := testConfig()
	builder := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountProvider(newMockAccountProvider()).
		WithMailer(&captureMailer{})

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	token, err := engine.sessions.CreateSession("acct-001", "alice@example.com")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Zeroing the caller's secret after Build must not affect the engine's
	// copy; a shared slice would make this parse fail.
	for i := range cfg.Session.Secret {
		cfg.Session.Secret[i] = 0
	}

	claims, err := engine.sessions.ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	if claims.UID != "acct-001" {
		t.Fatalf("uid = %q", claims.UID)
	}
}
