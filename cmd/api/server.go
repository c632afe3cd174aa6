package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pairchat/internal/auth"
	"pairchat/internal/chat"
	"pairchat/internal/data"
	"pairchat/internal/middleware"
)

// userDirectory is the subset of the users store the handlers use.
type userDirectory interface {
	CreateUser(ctx context.Context, email, hashedPassword, displayName string) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
	GetUserByID(ctx context.Context, uid string) (*data.User, error)
	ListContacts(ctx context.Context, excludeUID, search string) ([]*data.User, error)
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
	UpdateStatus(ctx context.Context, uid, status string) error
	UpdatePhotoURL(ctx context.Context, uid, photoURL string) error
	SetPresence(ctx context.Context, uid string, online bool) error
}

// avatarStore uploads profile images and returns their public URL.
type avatarStore interface {
	UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string, size int64) (string, error)
}

// Server holds every dependency the HTTP handlers need.
type Server struct {
	users   userDirectory
	engine  *chat.Engine
	auth    *auth.JWTManager
	avatars avatarStore
	logger  *slog.Logger
}

// newServer returns a ready-to-use Server wired with stores, the
// conversation engine and the auth manager.
func newServer(users userDirectory, engine *chat.Engine, authMgr *auth.JWTManager, avatars avatarStore, logger *slog.Logger) *Server {
	return &Server{
		users:   users,
		engine:  engine,
		auth:    authMgr,
		avatars: avatars,
		logger:  logger,
	}
}

// routes assembles the full HTTP surface. Register and login sit behind
// the per-IP limiter; everything else requires a valid token.
func (s *Server) routes(limiter *middleware.LimiterStore) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter))
			r.Post("/auth/register", s.handleRegister)
			r.Post("/auth/login", s.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/auth/logout", s.handleLogout)
			r.Get("/contacts", s.handleContacts)
			r.Get("/chats", s.handleRecentChats)
			r.Get("/chats/{uid}/messages", s.handleHistory)
			r.Post("/chats/{uid}/messages", s.handleSend)
			r.Post("/chats/{uid}/read", s.handleMarkRead)
			r.Get("/profile", s.handleProfile)
			r.Put("/profile", s.handleProfileUpdate)
			r.Post("/profile/avatar", s.handleAvatarUpload)
			r.Get("/ws", s.handleWS)
		})
	})

	return r
}
