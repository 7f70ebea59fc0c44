package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresLikeRepo はPostgreSQLを使用したいいねリポジトリ。
type PostgresLikeRepo struct {
	db *sql.DB
}

// NewPostgresLikeRepo はPostgresLikeRepoを生成する。
func NewPostgresLikeRepo(db *sql.DB) *PostgresLikeRepo {
	return &PostgresLikeRepo{db: db}
}

// Toggle は(rentalID, userID)のいいねの有無を反転し、反転後の状態を返す。
// DELETEを先に試行し、行があれば解除（liked=false）。
// なければINSERT ON CONFLICT DO NOTHINGで付与（liked=true）。
// 全体を1トランザクションで実行するため、同一ペアからの並行トグルでも
// 重複行は生じず、「削除対象なし→削除失敗」も起きない。
// 挿入時の一意制約衝突は「既に他のリクエストが付与済み」としてliked=trueに吸収する。
func (r *PostgresLikeRepo) Toggle(ctx context.Context, rentalID int64, userID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM likes WHERE rental_id = $1 AND user_id = $2`,
		rentalID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("いいねの解除に失敗しました: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除行数の取得に失敗しました: %w", err)
	}

	liked := false
	if deleted == 0 {
		// 付与方向のトグル。並行挿入との衝突はDO NOTHINGで吸収し、
		// どちらのリクエストもliked=trueとして返す。
		_, err := tx.ExecContext(ctx,
			`INSERT INTO likes (rental_id, user_id) VALUES ($1, $2)
			 ON CONFLICT (rental_id, user_id) DO NOTHING`,
			rentalID, userID,
		)
		if err != nil {
			var pqErr *pq.Error
			if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
				return false, fmt.Errorf("いいねの付与に失敗しました: %w", err)
			}
		}
		liked = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return liked, nil
}

// CountByRental は物件のいいね数を返す。
func (r *PostgresLikeRepo) CountByRental(ctx context.Context, rentalID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE rental_id = $1`,
		rentalID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("いいね数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// CountByRentalIDs は複数物件のいいね数をまとめて取得する。
// いいねが1件もない物件は結果マップに含まれない（0件として扱う）。
func (r *PostgresLikeRepo) CountByRentalIDs(ctx context.Context, rentalIDs []int64) (map[int64]int, error) {
	result := make(map[int64]int, len(rentalIDs))
	if len(rentalIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT rental_id, COUNT(*) FROM likes
		 WHERE rental_id = ANY($1)
		 GROUP BY rental_id`,
		pq.Array(rentalIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("いいね数の一括取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rentalID int64
		var count int
		if err := rows.Scan(&rentalID, &count); err != nil {
			return nil, fmt.Errorf("いいね数行の読み取りに失敗しました: %w", err)
		}
		result[rentalID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("いいね数の走査に失敗しました: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ LikeRepository = (*PostgresLikeRepo)(nil)
