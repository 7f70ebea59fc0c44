package handler

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/sumika/internal/middleware"
	"github.com/hitoshi/sumika/internal/model"
	"github.com/hitoshi/sumika/internal/rental"
	"github.com/hitoshi/sumika/internal/storage"
)

// RentalServiceInterface は物件ハンドラーが必要とするサービスインターフェース。
type RentalServiceInterface interface {
	// Create は物件を作成する。
	Create(ctx context.Context, userID string, params rental.CreateParams) (*model.Rental, error)
}

// InteractionServiceInterface はコメント・いいねハンドラーが必要とするサービスインターフェース。
type InteractionServiceInterface interface {
	// AddComment は物件にコメントを追加する。
	AddComment(ctx context.Context, rentalID int64, userID, body string) (*model.Comment, error)
	// ToggleLike はいいね状態を反転し、反転後の状態を返す。
	ToggleLike(ctx context.Context, rentalID int64, userID string) (bool, error)
	// CountLikes は物件のいいね数を返す。
	CountLikes(ctx context.Context, rentalID int64) (int, error)
}

// RentalHandlerConfig は物件ハンドラーの設定。
type RentalHandlerConfig struct {
	// MaxUploadBytes は画像1枚あたりの最大サイズ。
	MaxUploadBytes int64
}

// RentalHandler は物件投稿とコメント・いいねのHTTPハンドラー。
type RentalHandler struct {
	rentals      RentalServiceInterface
	interactions InteractionServiceInterface
	blobs        storage.BlobStore
	config       RentalHandlerConfig
}

// NewRentalHandler はRentalHandlerを生成する。
func NewRentalHandler(
	rentals RentalServiceInterface,
	interactions InteractionServiceInterface,
	blobs storage.BlobStore,
	config RentalHandlerConfig,
) *RentalHandler {
	return &RentalHandler{
		rentals:      rentals,
		interactions: interactions,
		blobs:        blobs,
		config:       config,
	}
}

// rentalResponse は物件のAPIレスポンス。
type rentalResponse struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       *float64  `json:"price"`
	Location    string    `json:"location"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
}

// addCommentRequest はコメント追加リクエストのボディ。
type addCommentRequest struct {
	Body string `json:"body"`
}

// likeResponse はいいねトグルのレスポンス。反転後の状態と最新のいいね数を返す。
type likeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

func toRentalResponse(r *model.Rental) rentalResponse {
	images := r.Images
	if images == nil {
		images = []string{}
	}
	return rentalResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Location:    r.Location,
		Images:      images,
		CreatedAt:   r.CreatedAt,
	}
}

// saveImages はmultipartの画像ファイルを保存し、参照の一覧を返す。
// 上限を超える分のファイルは受け取らず黙って切り捨てる。
// サイズ超過と画像以外のContent-Typeはバリデーションエラー。
func (h *RentalHandler) saveImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > model.MaxRentalImages {
		files = files[:model.MaxRentalImages]
	}

	refs := make([]string, 0, len(files))
	for _, fh := range files {
		if fh.Size > h.config.MaxUploadBytes {
			return nil, model.NewValidationError([]model.FieldError{
				{Field: "images", Message: "画像サイズが上限を超えています"},
			})
		}
		contentType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return nil, model.NewValidationError([]model.FieldError{
				{Field: "images", Message: "画像ファイルのみアップロードできます"},
			})
		}

		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		ref, err := h.blobs.Save(ctx, fh.Filename, contentType, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// CreateRental はmultipart/form-dataで物件を作成する。
// フォームフィールド: title, description, location, price、ファイル: images（最大6枚）。
// POST /api/rentals
func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	// メモリ上限を超えた分は一時ファイルに落ちる
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "multipart/form-dataの解析に失敗しました。",
			Category: "validation",
			Action:   "フォーム形式を確認して再送信してください。",
		})
		return
	}

	var images []string
	if r.MultipartForm != nil {
		images, err = h.saveImages(r.Context(), r.MultipartForm.File["images"])
		if err != nil {
			handleServiceError(w, err)
			return
		}
	}

	created, err := h.rentals.Create(r.Context(), userID, rental.CreateParams{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		PriceRaw:    r.FormValue("price"),
		Images:      images,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toRentalResponse(created))
}

// AddComment は物件にコメントを追加する。
// POST /api/rentals/{id}/comments
func (h *RentalHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	rentalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handleServiceError(w, model.NewRentalNotFoundError(0))
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	comment, err := h.interactions.AddComment(r.Context(), rentalID, userID, req.Body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toCommentResponse(*comment))
}

// ToggleLike はいいね状態を反転する。冪等なトグルで、同じ呼び出しを
// 2回繰り返すと元の状態に戻る。
// POST /api/rentals/{id}/like
func (h *RentalHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	rentalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handleServiceError(w, model.NewRentalNotFoundError(0))
		return
	}

	liked, err := h.interactions.ToggleLike(r.Context(), rentalID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	count, err := h.interactions.CountLikes(r.Context(), rentalID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, likeResponse{
		Liked:     liked,
		LikeCount: count,
	})
}
