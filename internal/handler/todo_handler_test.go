package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/sumika/internal/model"
)

// --- モック ---

type mockTodoService struct {
	createFn func(ctx context.Context, userID, body string) (*model.Todo, error)
	listFn   func(ctx context.Context, userID string) ([]model.Todo, error)
	updateFn func(ctx context.Context, id int64, userID string, body *string, done *bool) (*model.Todo, error)
	deleteFn func(ctx context.Context, id int64, userID string) error
}

func (m *mockTodoService) Create(ctx context.Context, userID, body string) (*model.Todo, error) {
	return m.createFn(ctx, userID, body)
}

func (m *mockTodoService) List(ctx context.Context, userID string) ([]model.Todo, error) {
	return m.listFn(ctx, userID)
}

func (m *mockTodoService) Update(ctx context.Context, id int64, userID string, body *string, done *bool) (*model.Todo, error) {
	return m.updateFn(ctx, id, userID, body, done)
}

func (m *mockTodoService) Delete(ctx context.Context, id int64, userID string) error {
	return m.deleteFn(ctx, id, userID)
}

func todoRouter(h *TodoHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/api/todos", h.CreateTodo)
	r.Get("/api/todos", h.ListTodos)
	r.Patch("/api/todos/{id}", h.UpdateTodo)
	r.Delete("/api/todos/{id}", h.DeleteTodo)
	return r
}

// --- テスト ---

// Todo作成で201が返ることを検証
func TestTodoHandler_CreateTodo(t *testing.T) {
	svc := &mockTodoService{
		createFn: func(ctx context.Context, userID, body string) (*model.Todo, error) {
			return &model.Todo{ID: 1, UserID: userID, Body: body}, nil
		},
	}
	r := todoRouter(NewTodoHandler(svc))

	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(`{"body":"掃除する"}`))
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var body todoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Body != "掃除する" || body.Done {
		t.Errorf("body = %+v", body)
	}
}

// 一覧が空でも空配列（nullでない）で返ることを検証
func TestTodoHandler_ListTodos_EmptySerializesAsArray(t *testing.T) {
	svc := &mockTodoService{
		listFn: func(ctx context.Context, userID string) ([]model.Todo, error) {
			return []model.Todo{}, nil
		},
	}
	r := todoRouter(NewTodoHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

// 部分更新でnil・非nilのフィールドが正しく渡ることを検証
func TestTodoHandler_UpdateTodo_PartialFields(t *testing.T) {
	var gotBody *string
	var gotDone *bool
	svc := &mockTodoService{
		updateFn: func(ctx context.Context, id int64, userID string, body *string, done *bool) (*model.Todo, error) {
			gotBody, gotDone = body, done
			return &model.Todo{ID: id, UserID: userID, Done: done != nil && *done}, nil
		},
	}
	r := todoRouter(NewTodoHandler(svc))

	req := httptest.NewRequest(http.MethodPatch, "/api/todos/1", strings.NewReader(`{"done":true}`))
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotBody != nil {
		t.Errorf("body = %v, want nil (omitted field)", *gotBody)
	}
	if gotDone == nil || !*gotDone {
		t.Error("done = nil, want true")
	}
}

// 他人のTodoの更新で403が返ることを検証
func TestTodoHandler_UpdateTodo_Forbidden(t *testing.T) {
	svc := &mockTodoService{
		updateFn: func(ctx context.Context, id int64, userID string, body *string, done *bool) (*model.Todo, error) {
			return nil, model.NewForbiddenError()
		},
	}
	r := todoRouter(NewTodoHandler(svc))

	req := httptest.NewRequest(http.MethodPatch, "/api/todos/1", strings.NewReader(`{"done":true}`))
	req = authedRequest(req, "user-2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

// 存在しないTodoの更新で404が返ることを検証
func TestTodoHandler_UpdateTodo_NotFound(t *testing.T) {
	svc := &mockTodoService{
		updateFn: func(ctx context.Context, id int64, userID string, body *string, done *bool) (*model.Todo, error) {
			return nil, model.NewTodoNotFoundError(id)
		},
	}
	r := todoRouter(NewTodoHandler(svc))

	req := httptest.NewRequest(http.MethodPatch, "/api/todos/999", strings.NewReader(`{"done":true}`))
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

// 削除成功で204が返ることを検証
func TestTodoHandler_DeleteTodo(t *testing.T) {
	svc := &mockTodoService{
		deleteFn: func(ctx context.Context, id int64, userID string) error {
			return nil
		},
	}
	r := todoRouter(NewTodoHandler(svc))

	req := httptest.NewRequest(http.MethodDelete, "/api/todos/1", nil)
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
}

// 認証コンテキストなしの一覧取得で401が返ることを検証
func TestTodoHandler_ListTodos_Unauthenticated(t *testing.T) {
	r := todoRouter(NewTodoHandler(&mockTodoService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
