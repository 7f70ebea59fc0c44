package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/sumika/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したTodoリポジトリ。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// Create はTodoを作成し、採番されたIDと各日時をtodoに書き戻す。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO todos (user_id, body, done)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		todo.UserID, todo.Body, todo.Done,
	).Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Todoの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのTodoを取得する。見つからない場合はnilを返す。
func (r *PostgresTodoRepo) FindByID(ctx context.Context, id int64) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, body, done, created_at, updated_at
		 FROM todos WHERE id = $1`,
		id,
	).Scan(&todo.ID, &todo.UserID, &todo.Body, &todo.Done, &todo.CreatedAt, &todo.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Todoの取得に失敗しました: %w", err)
	}

	return todo, nil
}

// ListByUser はユーザーのTodoをID降順で返す。
func (r *PostgresTodoRepo) ListByUser(ctx context.Context, userID string) ([]model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, body, done, created_at, updated_at
		 FROM todos WHERE user_id = $1
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("Todo一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Body, &t.Done, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("Todo行の読み取りに失敗しました: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Todo一覧の走査に失敗しました: %w", err)
	}

	return todos, nil
}

// Update はTodoを部分更新する。nilフィールドは変更せず既存の値を維持する。
// COALESCEで未指定フィールドを現在値に落とし、1文で冪等に更新する。
func (r *PostgresTodoRepo) Update(ctx context.Context, id int64, body *string, done *bool) (*model.Todo, error) {
	var bodyVal sql.NullString
	if body != nil {
		bodyVal = sql.NullString{String: *body, Valid: true}
	}
	var doneVal sql.NullBool
	if done != nil {
		doneVal = sql.NullBool{Bool: *done, Valid: true}
	}

	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE todos
		 SET body = COALESCE($2, body),
		     done = COALESCE($3, done),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING id, user_id, body, done, created_at, updated_at`,
		id, bodyVal, doneVal,
	).Scan(&todo.ID, &todo.UserID, &todo.Body, &todo.Done, &todo.CreatedAt, &todo.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, model.NewTodoNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("Todoの更新に失敗しました: %w", err)
	}

	return todo, nil
}

// Delete は指定IDのTodoを削除する。
func (r *PostgresTodoRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("Todoの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除行数の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewTodoNotFoundError(id)
	}
	return nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
