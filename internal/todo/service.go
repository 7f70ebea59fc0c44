// Package todo は個人Todoのドメインロジックを提供する。
//
// Todoは完全に所有者スコープで、他ユーザーのTodoは一覧に現れず、
// IDを知っていても更新・削除できない。
package todo

import (
	"context"
	"log/slog"

	"github.com/hitoshi/sumika/internal/model"
	"github.com/hitoshi/sumika/internal/repository"
	"github.com/hitoshi/sumika/internal/security"
)

// Service はTodoのサービス層。
type Service struct {
	todoRepo  repository.TodoRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(todoRepo repository.TodoRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{todoRepo: todoRepo, sanitizer: sanitizer}
}

// Create はTodoを作成する。本文は前後空白除去後に必須で、未完了状態で始まる。
func (s *Service) Create(ctx context.Context, userID, body string) (*model.Todo, error) {
	sanitized := s.sanitizer.Sanitize(body)
	if sanitized == "" {
		return nil, model.NewValidationError([]model.FieldError{
			{Field: "body", Message: "本文は必須です"},
		})
	}

	todo := &model.Todo{
		UserID: userID,
		Body:   sanitized,
		Done:   false,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, err
	}

	slog.Info("todo created", slog.Int64("todo_id", todo.ID), slog.String("user_id", userID))
	return todo, nil
}

// List は呼び出しユーザー自身のTodoを新しい順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]model.Todo, error) {
	todos, err := s.todoRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// findOwned はTodoを取得し、存在と所有を確認する。
// 存在しなければTODO_NOT_FOUND、他人のTodoならFORBIDDENを返す。
func (s *Service) findOwned(ctx context.Context, id int64, userID string) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError(id)
	}
	if todo.UserID != userID {
		return nil, model.NewForbiddenError()
	}
	return todo, nil
}

// Update はTodoを部分更新する。
// body・doneのうちnilでないフィールドだけを変更し、
// 両方nilの場合は何も変えずに現在の状態を返す。
func (s *Service) Update(ctx context.Context, id int64, userID string, body *string, done *bool) (*model.Todo, error) {
	if _, err := s.findOwned(ctx, id, userID); err != nil {
		return nil, err
	}

	if body != nil {
		sanitized := s.sanitizer.Sanitize(*body)
		if sanitized == "" {
			return nil, model.NewValidationError([]model.FieldError{
				{Field: "body", Message: "本文は必須です"},
			})
		}
		body = &sanitized
	}

	updated, err := s.todoRepo.Update(ctx, id, body, done)
	if err != nil {
		return nil, err
	}

	slog.Info("todo updated", slog.Int64("todo_id", id), slog.String("user_id", userID))
	return updated, nil
}

// Delete はTodoを削除する。所有者以外は削除できない。
func (s *Service) Delete(ctx context.Context, id int64, userID string) error {
	if _, err := s.findOwned(ctx, id, userID); err != nil {
		return err
	}

	if err := s.todoRepo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("todo deleted", slog.Int64("todo_id", id), slog.String("user_id", userID))
	return nil
}
