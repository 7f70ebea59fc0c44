package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/sumika/internal/model"
)

// PostgresRentalRepo はPostgreSQLを使用した物件リポジトリ。
type PostgresRentalRepo struct {
	db *sql.DB
}

// NewPostgresRentalRepo はPostgresRentalRepoを生成する。
func NewPostgresRentalRepo(db *sql.DB) *PostgresRentalRepo {
	return &PostgresRentalRepo{db: db}
}

// Create は物件を作成し、採番されたIDと作成日時をrentalに書き戻す。
// 画像参照が7件以上の場合はCHECK制約違反となるため、サービス層で事前に制限する。
func (r *PostgresRentalRepo) Create(ctx context.Context, rental *model.Rental) error {
	if len(rental.Images) > model.MaxRentalImages {
		return fmt.Errorf("画像参照が上限を超えています: %d件", len(rental.Images))
	}

	var price sql.NullFloat64
	if rental.Price != nil {
		price = sql.NullFloat64{Float64: *rental.Price, Valid: true}
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO rentals (user_id, title, description, price, location, images)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		rental.UserID, rental.Title, rental.Description, price, rental.Location,
		pq.Array(rental.Images),
	).Scan(&rental.ID, &rental.CreatedAt)
	if err != nil {
		return fmt.Errorf("物件の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの物件を取得する。見つからない場合はnilを返す。
func (r *PostgresRentalRepo) FindByID(ctx context.Context, id int64) (*model.Rental, error) {
	rental := &model.Rental{}
	var price sql.NullFloat64
	var images pq.StringArray

	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, price, location, images, created_at
		 FROM rentals WHERE id = $1`,
		id,
	).Scan(
		&rental.ID, &rental.UserID, &rental.Title, &rental.Description,
		&price, &rental.Location, &images, &rental.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("物件の取得に失敗しました: %w", err)
	}

	if price.Valid {
		rental.Price = &price.Float64
	}
	rental.Images = imagesValue(images)

	return rental, nil
}

// FindByIDWithOwner は指定IDの物件をオーナー名付きで取得する。見つからない場合はnilを返す。
func (r *PostgresRentalRepo) FindByIDWithOwner(ctx context.Context, id int64) (*RentalWithOwner, error) {
	row := &RentalWithOwner{}
	var price sql.NullFloat64
	var images pq.StringArray

	err := r.db.QueryRowContext(ctx,
		`SELECT r.id, r.user_id, r.title, r.description, r.price, r.location, r.images, r.created_at,
		        u.name
		 FROM rentals r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.id = $1`,
		id,
	).Scan(
		&row.ID, &row.UserID, &row.Title, &row.Description,
		&price, &row.Location, &images, &row.CreatedAt,
		&row.OwnerName,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("物件のオーナー付き取得に失敗しました: %w", err)
	}

	if price.Valid {
		row.Price = &price.Float64
	}
	row.Images = imagesValue(images)

	return row, nil
}

// ListPageWithOwner は物件をID降順でオーナー名付きで取得する。
// IDは単調増加で採番されるため、ID降順は作成日時降順と等価である。
func (r *PostgresRentalRepo) ListPageWithOwner(ctx context.Context, offset, limit int) ([]RentalWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.title, r.description, r.price, r.location, r.images, r.created_at,
		        u.name
		 FROM rentals r
		 JOIN users u ON u.id = r.user_id
		 ORDER BY r.id DESC
		 OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("物件一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var result []RentalWithOwner
	for rows.Next() {
		var row RentalWithOwner
		var price sql.NullFloat64
		var images pq.StringArray

		if err := rows.Scan(
			&row.ID, &row.UserID, &row.Title, &row.Description,
			&price, &row.Location, &images, &row.CreatedAt,
			&row.OwnerName,
		); err != nil {
			return nil, fmt.Errorf("物件行の読み取りに失敗しました: %w", err)
		}

		if price.Valid {
			row.Price = &price.Float64
		}
		row.Images = imagesValue(images)

		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("物件一覧の走査に失敗しました: %w", err)
	}

	return result, nil
}

// CountAll は物件の総数を返す。
func (r *PostgresRentalRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rentals`).Scan(&count); err != nil {
		return 0, fmt.Errorf("物件総数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// imagesValue はNULLや未設定の画像カラムを空スライスに正規化する。
// フィードの1件が欠けても他の行に影響させない。
func imagesValue(images pq.StringArray) []string {
	if images == nil {
		return []string{}
	}
	return []string(images)
}

// compile-time interface check
var _ RentalRepository = (*PostgresRentalRepo)(nil)
