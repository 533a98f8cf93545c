package auth

import (
	"errors"
	"testing"
	"time"

	"tagflow/internal/services"
)

func TestCapabilityTable(t *testing.T) {
	tests := []struct {
		role   Role
		cap    Capability
		expect bool
	}{
		{RoleTagger, CapTag, true},
		{RoleTagger, CapReview, false},
		{RoleTagger, CapAdmin, false},
		{RoleReviewer, CapTag, false},
		{RoleReviewer, CapReview, true},
		{RoleReviewer, CapAdmin, false},
		{RoleAdmin, CapTag, true},
		{RoleAdmin, CapReview, true},
		{RoleAdmin, CapAdmin, true},
		{Role("guest"), CapTag, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			if got := tt.role.Has(tt.cap); got != tt.expect {
				t.Fatalf("Has = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestIdentityRequire(t *testing.T) {
	tagger := Identity{UserID: 3, Role: RoleTagger}
	if err := tagger.Require(CapTag, "tag"); err != nil {
		t.Fatalf("expected tagger to tag, got %v", err)
	}
	err := tagger.Require(CapReview, "review task")
	if !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	anonymous := Identity{Role: RoleAdmin}
	if anonymous.Can(CapAdmin) {
		t.Fatal("expected identity without user id to hold no capabilities")
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("  Reviewer ")
	if err != nil || role != RoleReviewer {
		t.Fatalf("ParseRole = %q, %v", role, err)
	}
	if _, err := ParseRole("owner"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret!" {
		t.Fatal("expected hashed password")
	}
	ok, err := CheckPassword(hash, "s3cret!")
	if err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	ok, err = CheckPassword(hash, "wrong")
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, got %v %v", ok, err)
	}
}

func TestTokenIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef-test", time.Hour)
	token, expires, err := issuer.Issue(Identity{UserID: 42, Role: RoleReviewer})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expected future expiry, got %s", expires)
	}

	id, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != 42 || id.Role != RoleReviewer {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestTokenVerifyRejectsTamperedAndExpired(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef-test", time.Hour)
	token, _, err := issuer.Issue(Identity{UserID: 1, Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewTokenIssuer("another-secret-value-0000", time.Hour)
	if _, err := other.Verify(token); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong key, got %v", err)
	}
	if _, err := issuer.Verify("not-a-token"); !errors.Is(err, services.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for garbage, got %v", err)
	}

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	var unauthorized *services.UnauthorizedError
	if !errors.As(err, &unauthorized) || unauthorized.Msg != "token expired" {
		t.Fatalf("expected expired token error, got %v", err)
	}
}
