// Package feed は物件一覧フィードの組み立てを提供する。
//
// フィードは物件・投稿者名・コメント抜粋・いいね数を非正規化した
// 読み取り専用ビューで、新しい物件（ID降順）から順にページングして返す。
package feed

import (
	"context"

	"github.com/hitoshi/sumika/internal/model"
	"github.com/hitoshi/sumika/internal/repository"
)

const (
	// DefaultLimit はlimit未指定時の1ページ件数。
	DefaultLimit = 8
	// MaxLimit はlimitの上限。超過分は切り詰める。
	MaxLimit = 50
	// EmbeddedCommentCap はフィード各項目に埋め込むコメント数の上限。
	// 古い順に先頭から採用する。
	EmbeddedCommentCap = 5
)

// Service はフィード組み立てのサービス層。
// 件数取得とページ取得は別クエリのため、並行書き込み時に
// 合計値とページ内容が厳密に一致しないことがある（許容する）。
type Service struct {
	rentalRepo  repository.RentalRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	rentalRepo repository.RentalRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
) *Service {
	return &Service{
		rentalRepo:  rentalRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
	}
}

// clampPaging は境界外のページング指定を正規化する。
// limitは[1, MaxLimit]に収め、0以下や未指定(0)はDefaultLimit、
// 負のoffsetは0として扱う。エラーにはしない。
func clampPaging(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return offset, limit
}

// Assemble はフィードの1ページを組み立てる。
// 物件ページを1クエリで取得した後、ページ内の物件IDに対する
// コメント抜粋といいね数をそれぞれ1クエリずつでまとめて引く。
// 物件ごとのN+1クエリは発行しない。
func (s *Service) Assemble(ctx context.Context, offset, limit int) (*model.FeedPage, error) {
	offset, limit = clampPaging(offset, limit)

	total, err := s.rentalRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	rentals, err := s.rentalRepo.ListPageWithOwner(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	page := &model.FeedPage{
		Items:  make([]model.FeedEntry, 0, len(rentals)),
		Offset: offset,
		Limit:  limit,
		Total:  total,
	}

	if len(rentals) > 0 {
		ids := make([]int64, len(rentals))
		for i, r := range rentals {
			ids[i] = r.ID
		}

		commentsByRental, err := s.commentRepo.ListByRentalIDs(ctx, ids, EmbeddedCommentCap)
		if err != nil {
			return nil, err
		}
		likesByRental, err := s.likeRepo.CountByRentalIDs(ctx, ids)
		if err != nil {
			return nil, err
		}

		for _, r := range rentals {
			comments := commentsByRental[r.ID]
			if comments == nil {
				comments = []model.Comment{}
			}
			page.Items = append(page.Items, model.FeedEntry{
				Rental:    r.Rental,
				OwnerID:   r.UserID,
				OwnerName: r.OwnerName,
				Comments:  comments,
				LikeCount: likesByRental[r.ID],
			})
		}
	}

	page.HasMore = offset+len(page.Items) < total
	return page, nil
}

// AssembleDetail は単一物件のフィード項目を組み立てる。
// 一覧と異なりコメントは件数制限なしで全件を古い順に含める。
// 物件が存在しない場合はRENTAL_NOT_FOUNDを返す。
func (s *Service) AssembleDetail(ctx context.Context, rentalID int64) (*model.FeedEntry, error) {
	rental, err := s.rentalRepo.FindByIDWithOwner(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental == nil {
		return nil, model.NewRentalNotFoundError(rentalID)
	}

	comments, err := s.commentRepo.ListByRental(ctx, rentalID, 0)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	likeCount, err := s.likeRepo.CountByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	return &model.FeedEntry{
		Rental:    rental.Rental,
		OwnerID:   rental.UserID,
		OwnerName: rental.OwnerName,
		Comments:  comments,
		LikeCount: likeCount,
	}, nil
}
