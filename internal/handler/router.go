package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/sumika/internal/metrics"
	"github.com/hitoshi/sumika/internal/middleware"
	"github.com/hitoshi/sumika/internal/storage"
)

// HealthChecker はDB接続の死活確認を提供する。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	Logger            *slog.Logger

	// ヘルスチェック。nilの場合は無条件でokを返す
	HealthChecker HealthChecker

	// メトリクス
	MetricsCollector metrics.MetricsCollector
	MetricsGatherer  prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// フィード閲覧
	FeedService FeedServiceInterface

	// 物件・コメント・いいね
	RentalService      RentalServiceInterface
	InteractionService InteractionServiceInterface
	BlobStore          storage.BlobStore
	RentalConfig       RentalHandlerConfig

	// Todo
	TodoService TodoServiceInterface

	// ローカル画像のアップロードディレクトリ。空の場合は/uploads/を配信しない
	// （S3バックエンドでは画像は直接S3のURLで配信される）。
	UploadDir string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging
//
// フィード閲覧（/api/feed、GET /api/rentals/{id}）と認証エンドポイントは
// 公開、それ以外の/api/*は認証必須グループに置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.MetricsCollector != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.MetricsCollector))
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	feedHandler := NewFeedHandler(deps.FeedService)
	rentalHandler := NewRentalHandler(deps.RentalService, deps.InteractionService, deps.BlobStore, deps.RentalConfig)
	todoHandler := NewTodoHandler(deps.TodoService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(r.Context()); err != nil {
				writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Post("/api/register", authHandler.Register)
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/logout", authHandler.Logout)

	// フィードと物件詳細は未ログインでも閲覧できる
	r.Get("/api/feed", feedHandler.GetFeed)
	r.Get("/api/rentals/{id}", feedHandler.GetRental)

	// ローカル保存の画像配信
	if deps.UploadDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))

		r.Get("/api/me", authHandler.Me)

		// 物件投稿とインタラクション
		r.Post("/api/rentals", rentalHandler.CreateRental)
		r.Post("/api/rentals/{id}/comments", rentalHandler.AddComment)
		r.Post("/api/rentals/{id}/like", rentalHandler.ToggleLike)

		// Todo管理
		r.Route("/api/todos", func(r chi.Router) {
			r.Post("/", todoHandler.CreateTodo)
			r.Get("/", todoHandler.ListTodos)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", todoHandler.UpdateTodo)
				r.Delete("/", todoHandler.DeleteTodo)
			})
		})
	})

	return r
}
