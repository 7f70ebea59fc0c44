package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/sumika/internal/middleware"
	"github.com/hitoshi/sumika/internal/model"
)

// TodoServiceInterface はTodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	// Create はTodoを作成する。
	Create(ctx context.Context, userID, body string) (*model.Todo, error)
	// List は呼び出しユーザーのTodoを新しい順で返す。
	List(ctx context.Context, userID string) ([]model.Todo, error)
	// Update はTodoを部分更新する。nilのフィールドは変更しない。
	Update(ctx context.Context, id int64, userID string, body *string, done *bool) (*model.Todo, error)
	// Delete はTodoを削除する。
	Delete(ctx context.Context, id int64, userID string) error
}

// TodoHandler は個人TodoのHTTPハンドラー。全操作が認証必須。
type TodoHandler struct {
	service TodoServiceInterface
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(service TodoServiceInterface) *TodoHandler {
	return &TodoHandler{service: service}
}

// createTodoRequest はTodo作成リクエストのボディ。
type createTodoRequest struct {
	Body string `json:"body"`
}

// updateTodoRequest はTodo部分更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateTodoRequest struct {
	Body *string `json:"body"`
	Done *bool   `json:"done"`
}

// todoResponse はTodoのAPIレスポンス。
type todoResponse struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:        t.ID,
		Body:      t.Body,
		Done:      t.Done,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// todoIDFromRequest はURLパラメータからTodo IDを取り出す。
func todoIDFromRequest(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, model.NewTodoNotFoundError(0)
	}
	return id, nil
}

// CreateTodo はTodoを作成する。
// POST /api/todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	todo, err := h.service.Create(r.Context(), userID, req.Body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toTodoResponse(todo))
}

// ListTodos は呼び出しユーザーのTodo一覧を返す。
// GET /api/todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	todos, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]todoResponse, len(todos))
	for i := range todos {
		out[i] = toTodoResponse(&todos[i])
	}
	writeJSONResponse(w, http.StatusOK, out)
}

// UpdateTodo はTodoを部分更新する。
// PATCH /api/todos/{id}
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id, err := todoIDFromRequest(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req updateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	todo, err := h.service.Update(r.Context(), id, userID, req.Body, req.Done)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toTodoResponse(todo))
}

// DeleteTodo はTodoを削除する。
// DELETE /api/todos/{id}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	id, err := todoIDFromRequest(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
