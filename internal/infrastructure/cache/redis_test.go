package cache

import (
	"context"
	"testing"
	"time"
)

func TestRedis_UnavailableDegrades(t *testing.T) {
	r := &Redis{}
	ctx := context.Background()

	if r.Available() {
		t.Fatalf("nil client must be unavailable")
	}
	if err := r.RevokeSession(ctx, "sess", time.Minute); err == nil {
		t.Fatalf("revoke must report that nothing was stored")
	}
	if err := r.RevokeSession(ctx, "", time.Minute); err != nil {
		t.Fatalf("empty session id is a no-op, got %v", err)
	}
	revoked, err := r.IsSessionRevoked(ctx, "sess")
	if err != nil || revoked {
		t.Fatalf("expected not revoked without redis, got %v %v", revoked, err)
	}
	allowed, err := r.Allow(ctx, "login:1.2.3.4", 1, time.Minute)
	if !allowed || err == nil {
		t.Fatalf("expected allow with error so callers can fall back, got %v %v", allowed, err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close should be a no-op, got %v", err)
	}
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	if r.Available() {
		t.Fatalf("nil receiver must be unavailable")
	}
	if _, err := r.IsSessionRevoked(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := r.RevokeSession(context.Background(), "x", time.Minute); err == nil {
		t.Fatalf("expected revoke to fail on nil receiver")
	}
}
