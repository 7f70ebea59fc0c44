package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/sumika/internal/middleware"
	"github.com/hitoshi/sumika/internal/model"
	"github.com/hitoshi/sumika/internal/rental"
)

// --- モック ---

type mockRentalService struct {
	createFn func(ctx context.Context, userID string, params rental.CreateParams) (*model.Rental, error)
}

func (m *mockRentalService) Create(ctx context.Context, userID string, params rental.CreateParams) (*model.Rental, error) {
	return m.createFn(ctx, userID, params)
}

type mockInteractionService struct {
	addCommentFn func(ctx context.Context, rentalID int64, userID, body string) (*model.Comment, error)
	toggleLikeFn func(ctx context.Context, rentalID int64, userID string) (bool, error)
	countLikesFn func(ctx context.Context, rentalID int64) (int, error)
}

func (m *mockInteractionService) AddComment(ctx context.Context, rentalID int64, userID, body string) (*model.Comment, error) {
	return m.addCommentFn(ctx, rentalID, userID, body)
}

func (m *mockInteractionService) ToggleLike(ctx context.Context, rentalID int64, userID string) (bool, error) {
	return m.toggleLikeFn(ctx, rentalID, userID)
}

func (m *mockInteractionService) CountLikes(ctx context.Context, rentalID int64) (int, error) {
	if m.countLikesFn != nil {
		return m.countLikesFn(ctx, rentalID)
	}
	return 0, nil
}

// mockBlobStore は保存せずに連番の参照を返すBlobStore。
type mockBlobStore struct {
	saved []string
}

func (m *mockBlobStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	io.Copy(io.Discard, r)
	ref := "/uploads/mock-" + filename
	m.saved = append(m.saved, ref)
	return ref, nil
}

var testRentalConfig = RentalHandlerConfig{MaxUploadBytes: 5 * 1024 * 1024}

func authedRequest(req *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithIdentity(req.Context(), &model.TokenIdentity{UserID: userID})
	return req.WithContext(ctx)
}

// buildMultipart はフォームフィールドと画像ファイルからmultipartボディを組み立てる。
func buildMultipart(t *testing.T, fields map[string]string, imageNames []string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	for _, name := range imageNames {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="images"; filename="`+name+`"`)
		header.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		part.Write([]byte("fake-jpeg-bytes"))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// --- テスト ---

// multipartで物件が作成され、画像が保存されて201が返ることを検証
func TestRentalHandler_CreateRental(t *testing.T) {
	var gotParams rental.CreateParams
	rentals := &mockRentalService{
		createFn: func(ctx context.Context, userID string, params rental.CreateParams) (*model.Rental, error) {
			gotParams = params
			return &model.Rental{
				ID:       1,
				UserID:   userID,
				Title:    params.Title,
				Location: params.Location,
				Images:   params.Images,
			}, nil
		},
	}
	blobs := &mockBlobStore{}
	h := NewRentalHandler(rentals, &mockInteractionService{}, blobs, testRentalConfig)

	body, contentType := buildMultipart(t, map[string]string{
		"title":    "駅近1K",
		"location": "世田谷区",
		"price":    "85000",
	}, []string{"a.jpg", "b.jpg"})

	req := httptest.NewRequest(http.MethodPost, "/api/rentals", body)
	req.Header.Set("Content-Type", contentType)
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()

	h.CreateRental(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if gotParams.Title != "駅近1K" || gotParams.PriceRaw != "85000" {
		t.Errorf("params = %+v", gotParams)
	}
	if len(gotParams.Images) != 2 {
		t.Errorf("len(images) = %d, want 2", len(gotParams.Images))
	}
	if len(blobs.saved) != 2 {
		t.Errorf("saved = %d files, want 2", len(blobs.saved))
	}
}

// 7枚以上の画像が黙って6枚に切り詰められることを検証
func TestRentalHandler_CreateRental_TruncatesExcessImages(t *testing.T) {
	rentals := &mockRentalService{
		createFn: func(ctx context.Context, userID string, params rental.CreateParams) (*model.Rental, error) {
			return &model.Rental{ID: 1, Images: params.Images}, nil
		},
	}
	blobs := &mockBlobStore{}
	h := NewRentalHandler(rentals, &mockInteractionService{}, blobs, testRentalConfig)

	names := []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg", "7.jpg", "8.jpg"}
	body, contentType := buildMultipart(t, map[string]string{"title": "広い2LDK"}, names)

	req := httptest.NewRequest(http.MethodPost, "/api/rentals", body)
	req.Header.Set("Content-Type", contentType)
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()

	h.CreateRental(w, req)

	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}
	if len(blobs.saved) != model.MaxRentalImages {
		t.Errorf("saved = %d files, want %d", len(blobs.saved), model.MaxRentalImages)
	}
}

// 画像以外のContent-Typeが400になることを検証
func TestRentalHandler_CreateRental_RejectsNonImage(t *testing.T) {
	h := NewRentalHandler(&mockRentalService{}, &mockInteractionService{}, &mockBlobStore{}, testRentalConfig)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", "駅近1K")
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="images"; filename="evil.html"`)
	header.Set("Content-Type", "text/html")
	part, _ := mw.CreatePart(header)
	part.Write([]byte("<script>alert(1)</script>"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/rentals", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()

	h.CreateRental(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

// 認証コンテキストなしで401が返ることを検証
func TestRentalHandler_CreateRental_Unauthenticated(t *testing.T) {
	h := NewRentalHandler(&mockRentalService{}, &mockInteractionService{}, &mockBlobStore{}, testRentalConfig)

	body, contentType := buildMultipart(t, map[string]string{"title": "駅近1K"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/rentals", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.CreateRental(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// コメント追加で201と投稿者名付きレスポンスが返ることを検証
func TestRentalHandler_AddComment(t *testing.T) {
	interactions := &mockInteractionService{
		addCommentFn: func(ctx context.Context, rentalID int64, userID, body string) (*model.Comment, error) {
			return &model.Comment{ID: 10, RentalID: rentalID, UserID: userID, UserName: "Tanaka", Body: body}, nil
		},
	}
	h := NewRentalHandler(&mockRentalService{}, interactions, &mockBlobStore{}, testRentalConfig)

	r := chi.NewRouter()
	r.Post("/api/rentals/{id}/comments", h.AddComment)

	req := httptest.NewRequest(http.MethodPost, "/api/rentals/3/comments",
		strings.NewReader(`{"body":"いい部屋ですね"}`))
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var body commentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.ID != 10 || body.User.Name != "Tanaka" {
		t.Errorf("body = %+v", body)
	}
}

// 存在しない物件へのコメントで404が返ることを検証
func TestRentalHandler_AddComment_RentalNotFound(t *testing.T) {
	interactions := &mockInteractionService{
		addCommentFn: func(ctx context.Context, rentalID int64, userID, body string) (*model.Comment, error) {
			return nil, model.NewRentalNotFoundError(rentalID)
		},
	}
	h := NewRentalHandler(&mockRentalService{}, interactions, &mockBlobStore{}, testRentalConfig)

	r := chi.NewRouter()
	r.Post("/api/rentals/{id}/comments", h.AddComment)

	req := httptest.NewRequest(http.MethodPost, "/api/rentals/999/comments",
		strings.NewReader(`{"body":""}`))
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

// いいねトグルで反転後の状態と件数が返ることを検証
func TestRentalHandler_ToggleLike(t *testing.T) {
	interactions := &mockInteractionService{
		toggleLikeFn: func(ctx context.Context, rentalID int64, userID string) (bool, error) {
			return true, nil
		},
		countLikesFn: func(ctx context.Context, rentalID int64) (int, error) {
			return 5, nil
		},
	}
	h := NewRentalHandler(&mockRentalService{}, interactions, &mockBlobStore{}, testRentalConfig)

	r := chi.NewRouter()
	r.Post("/api/rentals/{id}/like", h.ToggleLike)

	req := httptest.NewRequest(http.MethodPost, "/api/rentals/3/like", nil)
	req = authedRequest(req, "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body likeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if !body.Liked {
		t.Error("liked should be true")
	}
	if body.LikeCount != 5 {
		t.Errorf("like_count = %d, want 5", body.LikeCount)
	}
}
