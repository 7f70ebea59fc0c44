// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/sumika/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// メールアドレスの一意制約違反の場合はmodel.ErrCodeEmailTakenのAPIErrorを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は正規化済みメールアドレスでユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// RentalWithOwner は物件にオーナーの表示名を結合した行。
type RentalWithOwner struct {
	model.Rental
	OwnerName string
}

// RentalRepository は物件データの永続化インターフェース。
type RentalRepository interface {
	// Create は物件を作成し、採番されたIDと作成日時をrentalに書き戻す。
	Create(ctx context.Context, rental *model.Rental) error

	// FindByID は指定IDの物件を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Rental, error)

	// FindByIDWithOwner は指定IDの物件をオーナー名付きで取得する。
	// 見つからない場合はnilを返す。
	FindByIDWithOwner(ctx context.Context, id int64) (*RentalWithOwner, error)

	// ListPageWithOwner は物件をID降順（作成日時降順と等価）でオーナー名付きで取得する。
	ListPageWithOwner(ctx context.Context, offset, limit int) ([]RentalWithOwner, error)

	// CountAll は物件の総数を返す。
	// ページクエリとは別リードのため、並行書き込み下では瞬間的にずれうる。
	CountAll(ctx context.Context) (int, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
// コメントは追記専用で、ID昇順が投稿順となる。
type CommentRepository interface {
	// Create はコメントを作成し、採番されたIDと作成日時をcommentに書き戻す。
	Create(ctx context.Context, comment *model.Comment) error

	// ListByRental は物件のコメントを投稿順（ID昇順）で返す。
	// capが0以下の場合は全件を返す。
	ListByRental(ctx context.Context, rentalID int64, cap int) ([]model.Comment, error)

	// ListByRentalIDs は複数物件のコメントを物件ごとに先頭cap件ずつまとめて取得する。
	// フィードページ組み立て時のN+1クエリを避けるためのバッチ版。
	ListByRentalIDs(ctx context.Context, rentalIDs []int64, cap int) (map[int64][]model.Comment, error)
}

// LikeRepository はいいねデータの永続化インターフェース。
type LikeRepository interface {
	// Toggle は(rentalID, userID)のいいねの有無を反転し、反転後の状態を返す。
	// 存在チェックと挿入/削除は同一トランザクションで実行され、
	// 同一ペアからの並行トグルでも重複行は生じない。
	Toggle(ctx context.Context, rentalID int64, userID string) (liked bool, err error)

	// CountByRental は物件のいいね数を返す。
	CountByRental(ctx context.Context, rentalID int64) (int, error)

	// CountByRentalIDs は複数物件のいいね数をまとめて取得する。
	// 結果に含まれない物件IDは0件として扱う。
	CountByRentalIDs(ctx context.Context, rentalIDs []int64) (map[int64]int, error)
}

// TodoRepository はTodoデータの永続化インターフェース。
// オーナースコープの強制はサービス層で行い、リポジトリは行操作のみを提供する。
type TodoRepository interface {
	// Create はTodoを作成し、採番されたIDと各日時をtodoに書き戻す。
	Create(ctx context.Context, todo *model.Todo) error

	// FindByID は指定IDのTodoを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Todo, error)

	// ListByUser はユーザーのTodoをID降順で返す。
	ListByUser(ctx context.Context, userID string) ([]model.Todo, error)

	// Update はTodoを部分更新する。nilフィールドは変更せず既存の値を維持する。
	Update(ctx context.Context, id int64, body *string, done *bool) (*model.Todo, error)

	// Delete は指定IDのTodoを削除する。
	Delete(ctx context.Context, id int64) error
}
