package auth

import (
	"testing"
	"time"
)

// 発行したトークンがそのまま検証を通ることを検証
func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager("test-secret", 15*time.Minute)

	token, err := m.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	identity, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if identity.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", identity.UserID, "user-1")
	}
	if identity.Email != "a@x.com" {
		t.Errorf("Email = %q, want %q", identity.Email, "a@x.com")
	}
}

// 期限切れトークンが拒否されることを検証
func TestTokenManager_Verify_Expired(t *testing.T) {
	m := NewTokenManager("test-secret", -1*time.Minute)

	token, err := m.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := m.Verify(token); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

// 異なる秘密鍵で署名されたトークンが拒否されることを検証
func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 15*time.Minute)
	verifier := NewTokenManager("secret-b", 15*time.Minute)

	token, err := issuer.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected error for token signed with different secret, got nil")
	}
}

// 改ざんされたトークンが拒否されることを検証
func TestTokenManager_Verify_Tampered(t *testing.T) {
	m := NewTokenManager("test-secret", 15*time.Minute)

	token, err := m.Issue("user-1", "a@x.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := m.Verify(tampered); err == nil {
		t.Fatal("expected error for tampered token, got nil")
	}
}

// 不正な文字列が拒否されることを検証
func TestTokenManager_Verify_Garbage(t *testing.T) {
	m := NewTokenManager("test-secret", 15*time.Minute)

	if _, err := m.Verify("not-a-jwt"); err == nil {
		t.Fatal("expected error for garbage token, got nil")
	}
	if _, err := m.Verify(""); err == nil {
		t.Fatal("expected error for empty token, got nil")
	}
}
