// Package interaction は物件に対するコメントといいねのドメインロジックを提供する。
package interaction

import (
	"context"
	"log/slog"

	"github.com/hitoshi/sumika/internal/model"
	"github.com/hitoshi/sumika/internal/repository"
	"github.com/hitoshi/sumika/internal/security"
)

// MetricsRecorder はコメント・いいねメトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordCommentCreated()
	RecordLikeToggled(liked bool)
}

// Service はコメントといいねのサービス層。
// どの操作も対象物件の存在確認を先に行い、存在しなければ
// RENTAL_NOT_FOUNDを返す。本文の検証はその後に行う。
type Service struct {
	rentalRepo  repository.RentalRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	userRepo    repository.UserRepository
	sanitizer   security.TextSanitizerService
	metrics     MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	rentalRepo repository.RentalRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	userRepo repository.UserRepository,
	sanitizer security.TextSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		rentalRepo:  rentalRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		userRepo:    userRepo,
		sanitizer:   sanitizer,
		metrics:     metrics,
	}
}

// ensureRentalExists は物件の存在を確認し、なければRENTAL_NOT_FOUNDを返す。
func (s *Service) ensureRentalExists(ctx context.Context, rentalID int64) error {
	rental, err := s.rentalRepo.FindByID(ctx, rentalID)
	if err != nil {
		return err
	}
	if rental == nil {
		return model.NewRentalNotFoundError(rentalID)
	}
	return nil
}

// AddComment は物件にコメントを追加する。
// 物件の存在確認が本文の検証より先に行われるため、存在しない物件への
// 空コメントはRENTAL_NOT_FOUNDになる。本文はHTMLを除去して保存する。
// コメントは追記専用で、編集・削除の操作は提供しない。
func (s *Service) AddComment(ctx context.Context, rentalID int64, userID, body string) (*model.Comment, error) {
	if err := s.ensureRentalExists(ctx, rentalID); err != nil {
		return nil, err
	}

	sanitized := s.sanitizer.Sanitize(body)
	if sanitized == "" {
		return nil, model.NewValidationError([]model.FieldError{
			{Field: "body", Message: "コメント本文は必須です"},
		})
	}

	comment := &model.Comment{
		RentalID: rentalID,
		UserID:   userID,
		Body:     sanitized,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// 作成直後のレスポンスに投稿者名を含めるための補完
	if user, err := s.userRepo.FindByID(ctx, userID); err == nil && user != nil {
		comment.UserName = user.Name
	}

	if s.metrics != nil {
		s.metrics.RecordCommentCreated()
	}

	slog.Info("comment created",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("rental_id", rentalID),
		slog.String("user_id", userID),
	)

	return comment, nil
}

// ToggleLike はいいねの状態を反転し、反転後の状態を返す。
// 未いいねなら付与してtrue、いいね済みなら解除してfalse。
// 同じ呼び出しを2回繰り返すと必ず元の状態に戻る。
func (s *Service) ToggleLike(ctx context.Context, rentalID int64, userID string) (bool, error) {
	if err := s.ensureRentalExists(ctx, rentalID); err != nil {
		return false, err
	}

	liked, err := s.likeRepo.Toggle(ctx, rentalID, userID)
	if err != nil {
		return false, err
	}

	if s.metrics != nil {
		s.metrics.RecordLikeToggled(liked)
	}

	slog.Info("like toggled",
		slog.Int64("rental_id", rentalID),
		slog.String("user_id", userID),
		slog.Bool("liked", liked),
	)

	return liked, nil
}

// CountLikes は物件のいいね数を返す。
func (s *Service) CountLikes(ctx context.Context, rentalID int64) (int, error) {
	if err := s.ensureRentalExists(ctx, rentalID); err != nil {
		return 0, err
	}
	return s.likeRepo.CountByRental(ctx, rentalID)
}

// ListComments は物件のコメントを古い順で全件返す。
func (s *Service) ListComments(ctx context.Context, rentalID int64) ([]model.Comment, error) {
	if err := s.ensureRentalExists(ctx, rentalID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByRental(ctx, rentalID, 0)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}
