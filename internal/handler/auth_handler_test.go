package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/habitd/internal/model"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのテスト用モック。
type mockAuthService struct {
	loginFunc          func(ctx context.Context, email string) (*model.Session, error)
	logoutFunc         func(ctx context.Context, sessionID string) error
	getCurrentUserFunc func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, email string) (*model.Session, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFunc != nil {
		return m.getCurrentUserFunc(ctx, sessionID)
	}
	return nil, nil
}

func newTestAuthHandler(svc AuthServiceInterface) *AuthHandler {
	return NewAuthHandler(svc, AuthHandlerConfig{
		CookieDomain:  "",
		CookieSecure:  false,
		SessionMaxAge: 3600,
	})
}

// findCookie はレスポンスから指定名のCookieを探す。
func findCookie(t *testing.T, res *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- ログイン ---

func TestAuthHandler_Login_SetsSessionCookie(t *testing.T) {
	svc := &mockAuthService{
		loginFunc: func(ctx context.Context, email string) (*model.Session, error) {
			return &model.Session{
				ID:        "session-1",
				UserID:    "user-1",
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	h := newTestAuthHandler(svc)

	body, _ := json.Marshal(loginRequest{Email: "hitoshi@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/auth/sessions", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	res := w.Result()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusCreated)
	}

	cookie := findCookie(t, res, "session_id")
	if cookie == nil {
		t.Fatal("session_id cookie should be set")
	}
	if cookie.Value != "session-1" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "session-1")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HTTP Only")
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, want 3600", cookie.MaxAge)
	}

	var resp map[string]string
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp["user_id"] != "user-1" {
		t.Errorf("user_id = %q, want %q", resp["user_id"], "user-1")
	}
}

func TestAuthHandler_Login_UnknownUser_Returns404(t *testing.T) {
	svc := &mockAuthService{
		loginFunc: func(ctx context.Context, email string) (*model.Session, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	h := newTestAuthHandler(svc)

	body, _ := json.Marshal(loginRequest{Email: "unknown@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/auth/sessions", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestAuthHandler_Login_EmptyEmail_Returns400(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/sessions", bytes.NewReader([]byte(`{"email":""}`)))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

// --- ログアウト ---

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var loggedOutID string
	svc := &mockAuthService{
		logoutFunc: func(ctx context.Context, sessionID string) error {
			loggedOutID = sessionID
			return nil
		},
	}
	h := newTestAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-1"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	res := w.Result()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNoContent)
	}
	if loggedOutID != "session-1" {
		t.Errorf("loggedOutID = %q, want %q", loggedOutID, "session-1")
	}

	cookie := findCookie(t, res, "session_id")
	if cookie == nil {
		t.Fatal("session_id cookie should be cleared")
	}
	if cookie.MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", cookie.MaxAge)
	}
}

func TestAuthHandler_Logout_ServiceError_StillClearsCookie(t *testing.T) {
	svc := &mockAuthService{
		logoutFunc: func(ctx context.Context, sessionID string) error {
			return context.DeadlineExceeded
		},
	}
	h := newTestAuthHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-1"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	res := w.Result()
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", res.StatusCode, http.StatusNoContent)
	}
	if cookie := findCookie(t, res, "session_id"); cookie == nil || cookie.MaxAge != -1 {
		t.Error("ログアウト失敗時もCookieはクリアされなければならない")
	}
}

// --- 現在のユーザー ---

func TestAuthHandler_Me(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFunc: func(ctx context.Context, sessionID string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: "hitoshi@example.com", Name: "ひとし"}, nil
		},
	}
	h := newTestAuthHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-1"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(w.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp["id"] != "user-1" || resp["email"] != "hitoshi@example.com" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAuthHandler_Me_NoCookie_Returns401(t *testing.T) {
	h := newTestAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Me_InvalidSession_Returns401(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFunc: func(ctx context.Context, sessionID string) (*model.User, error) {
			return nil, context.DeadlineExceeded
		},
	}
	h := newTestAuthHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "expired"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
