// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// Emailは小文字に正規化して保存し、大文字小文字を区別せず一意とする。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenIdentity はセッショントークンから復元した認証済みアイデンティティを表す。
type TokenIdentity struct {
	UserID string
	Email  string
}
