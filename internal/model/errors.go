// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, rental, todo, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeRentalNotFound     = "RENTAL_NOT_FOUND"
	ErrCodeTodoNotFound       = "TODO_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// FieldError はフィールド単位のバリデーション違反を表す。
type FieldError struct {
	Field   string
	Message string
}

// ValidationError はフィールド単位の違反一覧を持つバリデーションエラー。
// 最初に検出した違反セットをまとめて返し、リポジトリには到達させない。
type ValidationError struct {
	APIError
	Fields []FieldError
}

// Unwrap は埋め込みのAPIErrorを返す。
// errors.AsでValidationErrorをAPIErrorとしても扱えるようにする。
func (e *ValidationError) Unwrap() error {
	return &e.APIError
}

// NewValidationError はフィールド違反一覧からValidationErrorを生成する。
func NewValidationError(fields []FieldError) *ValidationError {
	return &ValidationError{
		APIError: APIError{
			Code:     ErrCodeValidationFailed,
			Message:  "入力内容に誤りがあります。",
			Category: "validation",
			Action:   "各フィールドのエラー内容を確認して再送信してください。",
		},
		Fields: fields,
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "auth",
		Action:   "別のメールアドレスで登録するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス未登録・パスワード不一致のどちらでも同一のエラーを返し、
// アカウント列挙を防ぐ。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は認可エラー（オーナー不一致）を生成する。
// 「見つからない」とは区別して返す。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "自分が所有するリソースに対してのみ操作できます。",
	}
}

// NewRentalNotFoundError は物件未検出エラーを生成する。
func NewRentalNotFoundError(rentalID int64) *APIError {
	return &APIError{
		Code:     ErrCodeRentalNotFound,
		Message:  fmt.Sprintf("指定された物件が見つかりません: %d", rentalID),
		Category: "rental",
		Action:   "物件IDを確認してください。",
	}
}

// NewTodoNotFoundError はTodo未検出エラーを生成する。
func NewTodoNotFoundError(todoID int64) *APIError {
	return &APIError{
		Code:     ErrCodeTodoNotFound,
		Message:  fmt.Sprintf("指定されたTodoが見つかりません: %d", todoID),
		Category: "todo",
		Action:   "TodoのIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
