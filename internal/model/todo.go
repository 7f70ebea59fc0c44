package model

import "time"

// Todo はユーザーごとのTodo項目を表す。
// 全操作はオーナーにスコープされ、他ユーザーからのアクセスは拒否される。
type Todo struct {
	ID        int64
	UserID    string
	Body      string
	Done      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
