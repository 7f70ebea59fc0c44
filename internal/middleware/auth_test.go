package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/sumika/internal/model"
)

// mockTokenVerifier はTokenVerifierのモック実装。
type mockTokenVerifier struct {
	verifyFn func(token string) (*model.TokenIdentity, error)
}

func (m *mockTokenVerifier) Verify(token string) (*model.TokenIdentity, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return nil, fmt.Errorf("no verify function")
}

func acceptToken(valid string, identity *model.TokenIdentity) *mockTokenVerifier {
	return &mockTokenVerifier{
		verifyFn: func(token string) (*model.TokenIdentity, error) {
			if token == valid {
				return identity, nil
			}
			return nil, model.NewUnauthorizedError()
		},
	}
}

// Cookieの有効なトークンで認証が通り、アイデンティティが注入されることを検証
func TestAuthMiddleware_ValidCookie(t *testing.T) {
	verifier := acceptToken("good-token", &model.TokenIdentity{UserID: "user-1", Email: "a@x.com"})
	mw := NewAuthMiddleware(verifier)

	var captured *model.TokenIdentity
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if captured == nil || captured.UserID != "user-1" {
		t.Errorf("identity = %+v, want user-1", captured)
	}
}

// Authorization: Bearerヘッダーでも認証が通ることを検証
func TestAuthMiddleware_BearerHeader(t *testing.T) {
	verifier := acceptToken("good-token", &model.TokenIdentity{UserID: "user-1"})
	mw := NewAuthMiddleware(verifier)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

// CookieとBearerが両方ある場合にCookieが優先されることを検証
func TestAuthMiddleware_CookieWinsOverBearer(t *testing.T) {
	var seen string
	verifier := &mockTokenVerifier{
		verifyFn: func(token string) (*model.TokenIdentity, error) {
			seen = token
			return &model.TokenIdentity{UserID: "user-1"}, nil
		},
	}
	mw := NewAuthMiddleware(verifier)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if seen != "cookie-token" {
		t.Errorf("verified token = %q, want cookie-token", seen)
	}
}

// トークンなしのリクエストが統一フォーマットの401になることを検証
func TestAuthMiddleware_NoToken(t *testing.T) {
	mw := NewAuthMiddleware(&mockTokenVerifier{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthorized)
	}
}

// 無効なトークンが401になることを検証
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	verifier := acceptToken("good-token", &model.TokenIdentity{UserID: "user-1"})
	mw := NewAuthMiddleware(verifier)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bad-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// Bearerプレフィックスなしのヘッダーが無視されることを検証
func TestExtractToken_IgnoresMalformedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	if got := extractToken(req); got != "" {
		t.Errorf("extractToken = %q, want empty", got)
	}
}

// コンテキストにアイデンティティがない場合のエラーを検証
func TestIdentityFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, err := IdentityFromContext(req.Context()); err == nil {
		t.Error("expected error for missing identity")
	}
	if _, err := UserIDFromContext(req.Context()); err == nil {
		t.Error("expected error for missing user ID")
	}
}
