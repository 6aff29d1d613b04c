package helpers

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestIsPasswordStrong(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Secret1", true},
		{"secret1", false},
		{"SECRET1", false},
		{"Secret", false},
		{"Se1", false},
	}
	for _, tt := range tests {
		if got := IsPasswordStrong(tt.password); got != tt.want {
			t.Errorf("IsPasswordStrong(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret1")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "Secret1" {
		t.Fatal("hash must differ from the password")
	}
	if !CheckPassword(hash, "Secret1") {
		t.Error("expected the password to match")
	}
	if CheckPassword(hash, "Secret2") {
		t.Error("expected a different password to fail")
	}
	if CheckPassword("", "Secret1") {
		t.Error("empty hash must never match")
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(" my photo (1).jpg "); got != "my_photo_1.jpg" {
		t.Errorf("got %q", got)
	}
	if got := SanitizeFileName("../../etc/passwd"); strings.Contains(got, "/") {
		t.Errorf("path separators must be stripped, got %q", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	ti, err := NewTokenIssuer("top-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	token, err := ti.Issue("R100", "STUDENT", "Ada")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ti.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.RegNumber() != "R100" || !claims.HasRole("STUDENT") || claims.IsAdmin() {
		t.Fatalf("unexpected claims %+v", claims)
	}

	admin, _ := ti.Issue("admin", RoleAdmin, "")
	ac, err := ti.ValidateToken(admin)
	if err != nil {
		t.Fatal(err)
	}
	if !ac.IsAdmin() || ac.RegNumber() != "" {
		t.Fatalf("admin claims should carry no reg number, got %+v", ac)
	}
}

func TestTokenRejected(t *testing.T) {
	ti, _ := NewTokenIssuer("top-secret", time.Hour)
	other, _ := NewTokenIssuer("another-secret", time.Hour)

	token, _ := other.Issue("R100", "STUDENT", "")
	if _, err := ti.ValidateToken(token); err == nil {
		t.Error("token signed by another issuer must be rejected")
	}
	if _, err := ti.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage must be rejected")
	}
	if _, err := NewTokenIssuer("", time.Hour); err == nil {
		t.Error("empty secret must be rejected")
	}
}

func TestStorageContextOutlivesCaller(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cancel()

	ctx, done := StorageContext(parent)
	defer done()
	if ctx.Err() != nil {
		t.Fatalf("storage context must not inherit cancellation, got %v", ctx.Err())
	}
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > StorageTimeout {
		t.Fatalf("storage context must be bounded by %v, deadline=%v ok=%v", StorageTimeout, deadline, ok)
	}
}
