package model

import "time"

// MaxRentalImages は物件1件あたりの画像参照の上限数。
const MaxRentalImages = 6

// Rental は賃貸物件の投稿を表す。
// IDは単調増加で採番されるため、ID降順が作成日時降順と等価になる。
type Rental struct {
	ID          int64
	UserID      string
	Title       string
	Description string
	Price       *float64
	Location    string
	Images      []string
	CreatedAt   time.Time
}

// Comment は物件に対するコメントを表す。追記専用で、ID昇順が投稿順となる。
type Comment struct {
	ID        int64
	RentalID  int64
	UserID    string
	UserName  string
	Body      string
	CreatedAt time.Time
}

// Like はユーザーの物件に対する「いいね」を表す。
// (RentalID, UserID) の組は高々1件しか存在しない。
type Like struct {
	RentalID  int64
	UserID    string
	CreatedAt time.Time
}

// FeedEntry はフィードに表示する物件1件の非正規化ビュー。
// 物件本体にオーナー情報・コメント・いいね数を結合したもの。
type FeedEntry struct {
	Rental
	OwnerID   string
	OwnerName string
	Comments  []Comment
	LikeCount int
}

// FeedPage はフィードの1ページ分の結果を表す。
// TotalはCOUNTとページ取得が別クエリのため、並行書き込み下では
// 瞬間的に古い値になりうる（許容済みの弱一貫性）。
type FeedPage struct {
	Items   []FeedEntry
	Offset  int
	Limit   int
	Total   int
	HasMore bool
}
