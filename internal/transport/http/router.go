package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"desiiseb/internal/handler"
	"desiiseb/internal/httputil"
	authmw "desiiseb/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	FollowHandler       *handler.FollowHandler
	FeedHandler         *handler.FeedHandler
	PostHandler         *handler.PostHandler
	InteractionHandler  *handler.InteractionHandler
	NotificationHandler *handler.NotificationHandler
	MediaHandler        *handler.MediaHandler
	GiphyHandler        *handler.GiphyHandler
	ModerationHandler   *handler.ModerationHandler
	HashtagHandler      *handler.HashtagHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(30 * time.Second))

	optional := authmw.OptionalAuthMiddleware(cfg.JWTSecret)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
	})

	// Public reads with optional authentication: anonymous visitors see
	// content, authenticated viewers also get their viewer_has_* flags.
	r.Group(func(r chi.Router) {
		r.Use(optional)

		r.Get("/feed", cfg.FeedHandler.GetFeed)

		r.Get("/users/search", cfg.UserHandler.Search)
		r.Get("/users/by/{username}", cfg.UserHandler.GetProfileByUsername)
		r.Get("/users/{id}", cfg.UserHandler.GetProfile)
		r.Get("/users/{id}/posts", cfg.FeedHandler.GetUserPosts)
		r.Get("/users/{id}/followers", cfg.FollowHandler.GetFollowers)
		r.Get("/users/{id}/following", cfg.FollowHandler.GetFollowing)

		r.Get("/posts/{id}", cfg.PostHandler.GetByID)
		r.Get("/posts/{id}/replies", cfg.FeedHandler.GetReplies)
		r.Get("/posts/{id}/likes", cfg.InteractionHandler.GetLikers)

		r.Get("/hashtags/trending", cfg.HashtagHandler.Trending)
		r.Get("/hashtags/{tag}/posts", cfg.FeedHandler.GetHashtagPosts)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.UserHandler.Me)
		r.Patch("/me", cfg.UserHandler.Update)
		r.Put("/me/avatar", cfg.UserHandler.UploadAvatar)
		r.Put("/me/cover", cfg.UserHandler.UploadCover)

		// Auth actions that require authentication
		r.Post("/auth/logout", cfg.AuthHandler.Logout)
		r.Post("/auth/logout-all", cfg.AuthHandler.LogoutAll)

		// Follow graph and blocks
		r.Post("/users/{id}/follow", cfg.FollowHandler.Follow)
		r.Delete("/users/{id}/follow", cfg.FollowHandler.Unfollow)
		r.Post("/users/{id}/block", cfg.ModerationHandler.Block)
		r.Delete("/users/{id}/block", cfg.ModerationHandler.Unblock)

		// Post writes
		r.Post("/posts", cfg.PostHandler.Create)
		r.Delete("/posts/{id}", cfg.PostHandler.Delete)

		// Interaction toggles
		r.Post("/posts/{id}/like", cfg.InteractionHandler.Like)
		r.Delete("/posts/{id}/like", cfg.InteractionHandler.Unlike)
		r.Post("/posts/{id}/repost", cfg.InteractionHandler.Repost)
		r.Delete("/posts/{id}/repost", cfg.InteractionHandler.Unrepost)
		r.Post("/posts/{id}/bookmark", cfg.InteractionHandler.Bookmark)
		r.Delete("/posts/{id}/bookmark", cfg.InteractionHandler.Unbookmark)
		r.Get("/bookmarks", cfg.InteractionHandler.ListBookmarks)

		// Notifications
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.NotificationHandler.List)
			r.Get("/unread-count", cfg.NotificationHandler.UnreadCount)
			r.Post("/read", cfg.NotificationHandler.MarkRead)
			r.Post("/read-all", cfg.NotificationHandler.MarkAllRead)
		})

		// Media endpoints (direct-to-R2 uploads)
		r.Post("/media/posts/presign", cfg.MediaHandler.PresignPostUpload)
		r.Post("/media/posts/presign/batch", cfg.MediaHandler.PresignPostUploadBatch)

		// GIF picker proxy
		r.Get("/giphy/{kind}/search", cfg.GiphyHandler.Search)
		r.Get("/giphy/{kind}/trending", cfg.GiphyHandler.Trending)

		// Moderation reports
		r.Get("/reports/reasons", cfg.ModerationHandler.ListReportReasons)
		r.Post("/reports", cfg.ModerationHandler.Report)
	})

	return r
}
