package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/sumika/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
type PostgresCommentRepo struct {
	db *sql.DB
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db *sql.DB) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// Create はコメントを作成し、採番されたIDと作成日時をcommentに書き戻す。
func (r *PostgresCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (rental_id, user_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		comment.RentalID, comment.UserID, comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}
	return nil
}

// ListByRental は物件のコメントを投稿順（ID昇順）で投稿者名付きで返す。
// capが0以下の場合は全件を返す。
func (r *PostgresCommentRepo) ListByRental(ctx context.Context, rentalID int64, cap int) ([]model.Comment, error) {
	query := `SELECT c.id, c.rental_id, c.user_id, u.name, c.body, c.created_at
	          FROM comments c
	          JOIN users u ON u.id = c.user_id
	          WHERE c.rental_id = $1
	          ORDER BY c.id ASC`
	args := []interface{}{rentalID}
	if cap > 0 {
		query += ` LIMIT $2`
		args = append(args, cap)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanComments(rows)
}

// ListByRentalIDs は複数物件のコメントを物件ごとに先頭cap件ずつまとめて取得する。
// ウィンドウ関数で物件ごとの投稿順先頭cap件に絞り、1クエリで返す。
func (r *PostgresCommentRepo) ListByRentalIDs(ctx context.Context, rentalIDs []int64, cap int) (map[int64][]model.Comment, error) {
	result := make(map[int64][]model.Comment, len(rentalIDs))
	if len(rentalIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, rental_id, user_id, user_name, body, created_at
		 FROM (
		     SELECT c.id, c.rental_id, c.user_id, u.name AS user_name, c.body, c.created_at,
		            ROW_NUMBER() OVER (PARTITION BY c.rental_id ORDER BY c.id ASC) AS rn
		     FROM comments c
		     JOIN users u ON u.id = c.user_id
		     WHERE c.rental_id = ANY($1)
		 ) ranked
		 WHERE rn <= $2
		 ORDER BY rental_id, id ASC`,
		pq.Array(rentalIDs), cap,
	)
	if err != nil {
		return nil, fmt.Errorf("コメントの一括取得に失敗しました: %w", err)
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		result[c.RentalID] = append(result[c.RentalID], c)
	}
	return result, nil
}

// scanComments はコメント行のスキャンを共通化する。
func scanComments(rows *sql.Rows) ([]model.Comment, error) {
	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.RentalID, &c.UserID, &c.UserName, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("コメント行の読み取りに失敗しました: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("コメント一覧の走査に失敗しました: %w", err)
	}
	return comments, nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
