// Package auth はユーザー登録・ログイン・セッショントークンの管理を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/sumika/internal/model"
	"github.com/hitoshi/sumika/internal/repository"
)

// minPasswordLength はパスワードの最小文字数ポリシー。
const minPasswordLength = 8

// MetricsRecorder は認証サービスが記録するメトリクスの送信先。
type MetricsRecorder interface {
	RecordUserRegistered()
}

// Service は認証に関するビジネスロジックを提供する。
// パスワードはbcryptでハッシュ化して保存し、平文は保持しない。
type Service struct {
	userRepo repository.UserRepository
	tokens   *TokenManager
	metrics  MetricsRecorder
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, tokens *TokenManager) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// SetMetrics はメトリクス記録先を設定する。未設定の場合は記録しない。
func (s *Service) SetMetrics(m MetricsRecorder) {
	s.metrics = m
}

// NormalizeEmail はメールアドレスを比較・保存用に正規化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register は新規ユーザーを登録する。
// メールアドレスは小文字に正規化して一意性を判定・保存する。
// パスワードは8文字以上を要求し、bcryptハッシュのみを保存する。
// 重複メールアドレスはEMAIL_TAKENエラーになる（INSERT時の一意制約で競合も吸収）。
func (s *Service) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = NormalizeEmail(email)

	var fields []model.FieldError
	if email == "" {
		fields = append(fields, model.FieldError{Field: "email", Message: "メールアドレスは必須です"})
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields = append(fields, model.FieldError{Field: "email", Message: "メールアドレスの形式が正しくありません"})
	}
	if len(password) < minPasswordLength {
		fields = append(fields, model.FieldError{Field: "password", Message: fmt.Sprintf("パスワードは%d文字以上にしてください", minPasswordLength)})
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordUserRegistered()
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Authenticate はメールアドレスとパスワードを検証し、セッショントークンを発行する。
// 未登録メールアドレスとパスワード不一致は同一のエラーを返し、
// アカウントの存在を推測させない。
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *model.User, error) {
	email = NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return token, user, nil
}

// VerifyToken はセッショントークンを検証し、認証済みアイデンティティを返す。
func (s *Service) VerifyToken(token string) (*model.TokenIdentity, error) {
	return s.tokens.Verify(token)
}

// CurrentUser は認証済みユーザーIDから最新のユーザー情報を取得する。
// トークンは有効だがユーザーが削除済みの場合はUSER_NOT_FOUNDエラーになる。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
