package utils

import (
	"context"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestSanitizeNote(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want *string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "blank", in: strPtr("   "), want: nil},
		{name: "trimmed", in: strPtr("  slept well \n"), want: strPtr("slept well")},
		{name: "markup stripped", in: strPtr("<b>good</b> day<script>alert(1)</script>"), want: strPtr("good day")},
		{name: "only markup", in: strPtr("<img src=x>"), want: nil},
		{name: "apostrophe kept", in: strPtr("I'm tired & sore"), want: strPtr("I'm tired & sore")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeNote(tc.in)
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("got %q, want nil", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("got %v, want %q", got, *tc.want)
			}
		})
	}
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, expiresAt, err := issuer.Issue(42, "a@example.com", true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "a@example.com" || !claims.Demo {
		t.Fatalf("claims: %+v", claims)
	}
	if !issuer.ExpiresAt(claims).Equal(expiresAt.Truncate(time.Second)) {
		t.Fatalf("expiry: got %s, want %s", issuer.ExpiresAt(claims), expiresAt)
	}

	if _, err := NewTokenIssuer("other", time.Hour).Parse(token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := issuer.Issue(1, "a@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := issuer.Parse(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestTokenBlacklistInMemory(t *testing.T) {
	bl := NewTokenBlacklist(nil)
	ctx := context.Background()

	bl.Revoke(ctx, "live", time.Now().Add(time.Hour))
	bl.Revoke(ctx, "already-expired", time.Now().Add(-time.Minute))

	if !bl.IsRevoked(ctx, "live") {
		t.Error("expected live token to be revoked")
	}
	if bl.IsRevoked(ctx, "already-expired") || bl.IsRevoked(ctx, "unknown") {
		t.Error("unexpected revocation")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	type payload struct {
		Score int     `json:"score"`
		Note  *string `json:"note"`
	}
	c.SetJSON(ctx, "dashboard:1:a", payload{Score: 4}, time.Minute)
	c.SetJSON(ctx, "dashboard:2:a", payload{Score: 2}, time.Minute)

	var got payload
	if !c.GetJSON(ctx, "dashboard:1:a", &got) || got.Score != 4 || got.Note != nil {
		t.Fatalf("get: %+v", got)
	}

	c.DeleteByPrefix(ctx, "dashboard:1:")
	if c.GetJSON(ctx, "dashboard:1:a", &got) {
		t.Fatal("expected prefix delete to drop the entry")
	}
	if c.Len() != 1 {
		t.Fatalf("expected other user's entry to survive, have %d", c.Len())
	}

	now = now.Add(2 * time.Minute)
	if c.GetJSON(ctx, "dashboard:2:a", &got) {
		t.Fatal("expected expired entry to miss")
	}
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "s3cret-pass") || CheckPassword(hash, "wrong") {
		t.Fatal("password check mismatch")
	}
	random, err := HashRandomPassword()
	if err != nil || !strings.HasPrefix(random, "$2") {
		t.Fatalf("random hash: %q %v", random, err)
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 15, 31)
	if p.TotalPages != 3 || p.Page != 2 {
		t.Fatalf("pagination: %+v", p)
	}
	if NewPagination(1, 15, 0).TotalPages != 0 {
		t.Fatal("expected zero pages for empty result")
	}
}
