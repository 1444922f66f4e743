package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/habitd/internal/middleware"
)

// HealthChecker はDB接続の生存確認を行うインターフェース。
// *sql.DB がこのインターフェースを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ヘルスチェック
	HealthChecker HealthChecker

	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ユーザー
	UserService UserServiceInterface

	// 習慣
	HabitService HabitServiceInterface

	// ステータス
	StatusService StatusServiceInterface

	// 統計レポート
	StatsService StatsServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → Session → CSRF → RateLimit(General)
//
// 認証ルート（/auth/*）とユーザー登録はミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	habitHandler := NewHabitHandler(deps.HabitService)
	statusHandler := NewStatusHandler(deps.StatusService)
	statsHandler := NewStatsHandler(deps.StatsService)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(req.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// CSRFトークン取得
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// セッション管理
	r.Route("/auth", func(r chi.Router) {
		r.Post("/sessions", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// ユーザー登録
	r.Post("/api/users", userHandler.Register)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 習慣管理
		r.Route("/api/habits", func(r chi.Router) {
			r.Get("/", habitHandler.ListHabits)
			r.Post("/", habitHandler.CreateHabit)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", habitHandler.GetHabit)
				r.Patch("/", habitHandler.UpdateHabit)
				r.Delete("/", habitHandler.DeleteHabit)

				// GET /api/habits/{id}/statuses - 習慣ごとのステータス一覧
				r.Get("/statuses", statusHandler.ListStatuses)
			})
		})

		// ステータス管理
		r.Route("/api/statuses/{id}", func(r chi.Router) {
			r.Get("/", statusHandler.GetStatus)
			r.Put("/complete", statusHandler.CompleteStatus)
			r.Delete("/", statusHandler.DeleteStatus)
		})

		// 統計レポート（レポート専用レート制限を追加）
		r.Route("/api/stats", func(r chi.Router) {
			r.Use(deps.RateLimiter.ReportMiddleware())

			r.Get("/completion", statsHandler.GetCompletion)
			r.Get("/progress", statsHandler.GetProgress)
			r.Get("/uncompleted", statsHandler.GetUncompleted)
		})

		// ユーザー管理
		r.Route("/api/users/me", func(r chi.Router) {
			r.Delete("/", userHandler.Withdraw)
		})
	})

	return r
}
