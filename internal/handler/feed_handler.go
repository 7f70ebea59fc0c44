package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/sumika/internal/model"
)

// FeedServiceInterface はフィードハンドラーが必要とするサービスインターフェース。
type FeedServiceInterface interface {
	// Assemble はフィードの1ページを組み立てる。
	Assemble(ctx context.Context, offset, limit int) (*model.FeedPage, error)
	// AssembleDetail は単一物件のフィード項目をコメント全件付きで組み立てる。
	AssembleDetail(ctx context.Context, rentalID int64) (*model.FeedEntry, error)
}

// FeedHandler はフィード閲覧のHTTPハンドラー。認証不要の読み取り専用面。
type FeedHandler struct {
	service FeedServiceInterface
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(service FeedServiceInterface) *FeedHandler {
	return &FeedHandler{service: service}
}

// ownerResponse は物件投稿者のAPIレスポンス。
type ownerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// commentResponse はコメントのAPIレスポンス。
type commentResponse struct {
	ID        int64         `json:"id"`
	Body      string        `json:"body"`
	User      ownerResponse `json:"user"`
	CreatedAt time.Time     `json:"created_at"`
}

// feedEntryResponse はフィード1項目の非正規化レスポンス。
type feedEntryResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       *float64          `json:"price"`
	Location    string            `json:"location"`
	Images      []string          `json:"images"`
	Owner       ownerResponse     `json:"owner"`
	Comments    []commentResponse `json:"comments"`
	LikeCount   int               `json:"like_count"`
	CreatedAt   time.Time         `json:"created_at"`
}

// feedPageResponse はフィードページのレスポンス。
type feedPageResponse struct {
	Items   []feedEntryResponse `json:"items"`
	Offset  int                 `json:"offset"`
	Limit   int                 `json:"limit"`
	Total   int                 `json:"total"`
	HasMore bool                `json:"has_more"`
}

func toCommentResponse(c model.Comment) commentResponse {
	return commentResponse{
		ID:   c.ID,
		Body: c.Body,
		User: ownerResponse{
			ID:   c.UserID,
			Name: c.UserName,
		},
		CreatedAt: c.CreatedAt,
	}
}

func toFeedEntryResponse(entry model.FeedEntry) feedEntryResponse {
	comments := make([]commentResponse, len(entry.Comments))
	for i, c := range entry.Comments {
		comments[i] = toCommentResponse(c)
	}
	images := entry.Images
	if images == nil {
		images = []string{}
	}
	return feedEntryResponse{
		ID:          entry.ID,
		Title:       entry.Title,
		Description: entry.Description,
		Price:       entry.Price,
		Location:    entry.Location,
		Images:      images,
		Owner: ownerResponse{
			ID:   entry.OwnerID,
			Name: entry.OwnerName,
		},
		Comments:  comments,
		LikeCount: entry.LikeCount,
		CreatedAt: entry.CreatedAt,
	}
}

// GetFeed は物件フィードの1ページを返す。
// offset・limitが数値でない・範囲外の場合はエラーにせず既定値に丸める。
// GET /api/feed?offset=0&limit=8
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	page, err := h.service.Assemble(r.Context(), offset, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]feedEntryResponse, len(page.Items))
	for i, entry := range page.Items {
		items[i] = toFeedEntryResponse(entry)
	}

	writeJSONResponse(w, http.StatusOK, feedPageResponse{
		Items:   items,
		Offset:  page.Offset,
		Limit:   page.Limit,
		Total:   page.Total,
		HasMore: page.HasMore,
	})
}

// GetRental は物件詳細をコメント全件付きで返す。
// GET /api/rentals/{id}
func (h *FeedHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handleServiceError(w, model.NewRentalNotFoundError(0))
		return
	}

	entry, err := h.service.AssembleDetail(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toFeedEntryResponse(*entry))
}
