package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/response"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Logger        *slog.Logger
	Users         UserStore
	Sessions      SessionManager
	Tokens        middleware.TokenAuthenticator
	Videos        VideoStore
	Comments      CommentStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Tweets        TweetStore
	Uploads       Uploader
	DB            Pinger

	CORSOrigins  []string
	CookieSecure bool
	// TrustProxy takes the client address from forwarded headers. Enable it
	// only behind a proxy that overwrites them.
	TrustProxy bool
	// AuthLimiter throttles credential endpoints; nil disables it.
	AuthLimiter middleware.RateLimiter
	// RateLimit is the per-IP request budget per minute for the whole API.
	RateLimit int
}

// NewRouter builds the HTTP API.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authn := middleware.Authenticator{Tokens: deps.Tokens, Users: deps.Users}
	authLimit := middleware.RateLimit(deps.AuthLimiter, "auth")

	health := HealthHandler{DB: deps.DB}
	accounts := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Uploads: deps.Uploads, CookieSecure: deps.CookieSecure}
	users := UserHandler{Users: deps.Users, Uploads: deps.Uploads}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, Uploads: deps.Uploads}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Users: deps.Users}
	tweets := TweetHandler{Tweets: deps.Tweets, Users: deps.Users}
	dashboard := DashboardHandler{Users: deps.Users, Videos: deps.Videos}

	r := chi.NewRouter()
	if deps.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(deps.CORSOrigins))
	r.Use(middleware.GlobalRateLimit(deps.RateLimit, time.Minute))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(r.Context(), w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", health.Handle)

		r.Route("/users", func(r chi.Router) {
			r.With(authLimit).Method(http.MethodPost, "/register", handlerFunc(accounts.Register))
			r.With(authLimit).Method(http.MethodPost, "/login", handlerFunc(accounts.Login))
			r.With(authLimit).Method(http.MethodPost, "/refreshtoken", handlerFunc(accounts.Refresh))
			r.With(authn.Optional).Method(http.MethodGet, "/c/{username}", handlerFunc(users.ChannelProfile))

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Method(http.MethodPost, "/logout", handlerFunc(accounts.Logout))
				r.Method(http.MethodPost, "/change-password", handlerFunc(accounts.ChangePassword))
				r.Method(http.MethodGet, "/current-user", handlerFunc(users.CurrentUser))
				r.Method(http.MethodPatch, "/update-account", handlerFunc(users.UpdateAccount))
				r.Method(http.MethodPatch, "/avatar", handlerFunc(users.UpdateAvatar))
				r.Method(http.MethodPatch, "/cover-image", handlerFunc(users.UpdateCoverImage))
				r.Method(http.MethodGet, "/history", handlerFunc(users.WatchHistory))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authn.Require)

			r.Route("/videos", func(r chi.Router) {
				r.Method(http.MethodGet, "/", handlerFunc(videos.List))
				r.Method(http.MethodPost, "/", handlerFunc(videos.Publish))
				r.Method(http.MethodGet, "/{videoId}", handlerFunc(videos.Get))
				r.Method(http.MethodPatch, "/{videoId}", handlerFunc(videos.Update))
				r.Method(http.MethodDelete, "/{videoId}", handlerFunc(videos.Delete))
				r.Method(http.MethodPatch, "/toggle/publish/{videoId}", handlerFunc(videos.TogglePublish))
			})

			r.Route("/comments", func(r chi.Router) {
				r.Method(http.MethodGet, "/{videoId}", handlerFunc(comments.List))
				r.Method(http.MethodPost, "/{videoId}", handlerFunc(comments.Add))
				r.Method(http.MethodPatch, "/c/{commentId}", handlerFunc(comments.Update))
				r.Method(http.MethodDelete, "/c/{commentId}", handlerFunc(comments.Delete))
			})

			r.Route("/likes", func(r chi.Router) {
				r.Method(http.MethodPost, "/toggle/v/{videoId}", handlerFunc(likes.ToggleVideo))
				r.Method(http.MethodPost, "/toggle/c/{commentId}", handlerFunc(likes.ToggleComment))
				r.Method(http.MethodPost, "/toggle/t/{tweetId}", handlerFunc(likes.ToggleTweet))
				r.Method(http.MethodGet, "/videos", handlerFunc(likes.LikedVideos))
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Method(http.MethodPost, "/c/{channelId}", handlerFunc(subscriptions.Toggle))
				r.Method(http.MethodGet, "/c/{channelId}", handlerFunc(subscriptions.Subscribers))
				r.Method(http.MethodGet, "/u/{subscriberId}", handlerFunc(subscriptions.SubscribedChannels))
			})

			r.Route("/playlist", func(r chi.Router) {
				r.Method(http.MethodPost, "/", handlerFunc(playlists.Create))
				r.Method(http.MethodGet, "/user/{userId}", handlerFunc(playlists.ListForUser))
				r.Method(http.MethodPatch, "/add/{videoId}/{playlistId}", handlerFunc(playlists.AddVideo))
				r.Method(http.MethodPatch, "/remove/{videoId}/{playlistId}", handlerFunc(playlists.RemoveVideo))
				r.Method(http.MethodGet, "/{playlistId}", handlerFunc(playlists.Get))
				r.Method(http.MethodPatch, "/{playlistId}", handlerFunc(playlists.Update))
				r.Method(http.MethodDelete, "/{playlistId}", handlerFunc(playlists.Delete))
			})

			r.Route("/tweets", func(r chi.Router) {
				r.Method(http.MethodPost, "/", handlerFunc(tweets.Create))
				r.Method(http.MethodGet, "/user/{userId}", handlerFunc(tweets.ListForUser))
				r.Method(http.MethodPatch, "/{tweetId}", handlerFunc(tweets.Update))
				r.Method(http.MethodDelete, "/{tweetId}", handlerFunc(tweets.Delete))
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Method(http.MethodGet, "/stats", handlerFunc(dashboard.Stats))
				r.Method(http.MethodGet, "/videos", handlerFunc(dashboard.ListVideos))
			})
		})
	})

	return r
}
