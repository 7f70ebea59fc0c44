// Package rental は物件投稿のドメインロジックを提供する。
package rental

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/hitoshi/sumika/internal/model"
	"github.com/hitoshi/sumika/internal/repository"
	"github.com/hitoshi/sumika/internal/security"
)

// MetricsRecorder は物件作成メトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordRentalCreated()
}

// Service は物件投稿のサービス層。
// バリデーションとサニタイズを行ってからリポジトリに委譲する。
type Service struct {
	rentalRepo repository.RentalRepository
	sanitizer  security.TextSanitizerService
	metrics    MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	rentalRepo repository.RentalRepository,
	sanitizer security.TextSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		rentalRepo: rentalRepo,
		sanitizer:  sanitizer,
		metrics:    metrics,
	}
}

// CreateParams は物件作成の入力。
// PriceRawは未指定の場合空文字列。Imagesはアップロード層が保存済みの参照列
// （アップロード層側で6件に切り詰め済み）。
type CreateParams struct {
	Title       string
	Description string
	Location    string
	PriceRaw    string
	Images      []string
}

// Create は物件を作成する。
// タイトルは前後空白除去後に必須、価格は指定時のみ数値形式を要求する。
// 違反はフィールド単位でまとめて返し、リポジトリには到達させない。
// 自由記述フィールドはHTMLを除去して保存する。
func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*model.Rental, error) {
	title := s.sanitizer.Sanitize(params.Title)

	var fields []model.FieldError
	if title == "" {
		fields = append(fields, model.FieldError{Field: "title", Message: "タイトルは必須です"})
	}

	var price *float64
	if params.PriceRaw != "" {
		v, err := strconv.ParseFloat(params.PriceRaw, 64)
		if err != nil {
			fields = append(fields, model.FieldError{Field: "price", Message: "価格は数値で指定してください"})
		} else {
			price = &v
		}
	}

	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	rental := &model.Rental{
		UserID:      userID,
		Title:       title,
		Description: s.sanitizer.Sanitize(params.Description),
		Price:       price,
		Location:    s.sanitizer.Sanitize(params.Location),
		Images:      params.Images,
	}
	if rental.Images == nil {
		rental.Images = []string{}
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordRentalCreated()
	}

	slog.Info("rental created",
		slog.Int64("rental_id", rental.ID),
		slog.String("user_id", userID),
		slog.Int("image_count", len(rental.Images)),
	)

	return rental, nil
}

// Get は指定IDの物件を取得する。見つからない場合はRENTAL_NOT_FOUNDエラーになる。
func (s *Service) Get(ctx context.Context, id int64) (*model.Rental, error) {
	rental, err := s.rentalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, model.NewRentalNotFoundError(id)
	}
	return rental, nil
}
