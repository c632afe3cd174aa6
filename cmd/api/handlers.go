package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/auth"
	"pairchat/internal/chat"
	"pairchat/internal/data"
)

const maxAvatarBytes = 10 << 20

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type authResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      *data.User `json:"user"`
}

// handleRegister creates an account and signs the caller in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = req.Email
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := s.users.CreateUser(r.Context(), req.Email, hashed, displayName)
	if err != nil {
		if errors.Is(err, data.ErrUserExists) {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		s.logger.Error("creating user", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, expiresAt, err := s.auth.GenerateToken(user.ID, user.DisplayName, user.Email)
	if err != nil {
		s.logger.Error("issuing token", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.users.SetPresence(r.Context(), user.UID(), true); err != nil {
		s.logger.Warn("setting presence on register", "user_id", user.UID(), "error", err)
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

// handleLogin verifies credentials and issues a token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("looking up user", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "wrong password")
		return
	}

	token, expiresAt, err := s.auth.GenerateToken(user.ID, user.DisplayName, user.Email)
	if err != nil {
		s.logger.Error("issuing token", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.users.SetPresence(r.Context(), user.UID(), true); err != nil {
		s.logger.Warn("setting presence on login", "user_id", user.UID(), "error", err)
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

// handleLogout flips the caller offline. The token itself stays valid
// until it expires.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	if err := s.users.SetPresence(r.Context(), sess.UserID, false); err != nil {
		s.logger.Warn("setting presence on logout", "user_id", sess.UserID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleContacts lists every other registered user, optionally filtered by
// the search query parameter.
func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	users, err := s.users.ListContacts(r.Context(), sess.UserID, r.URL.Query().Get("search"))
	if err != nil {
		s.logger.Error("listing contacts", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"contacts": users})
}

// handleRecentChats returns the caller's conversations, most recent first.
func (s *Server) handleRecentChats(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	chats, err := s.engine.RecentChats(r.Context(), sess)
	if err != nil {
		s.logger.Error("listing recent chats", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

// handleHistory returns one conversation's message log plus its rendered
// feed with date separators.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())
	otherUID := chi.URLParam(r, "uid")

	msgs, err := s.engine.History(r.Context(), sess, otherUID)
	if err != nil {
		s.logger.Error("loading history", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"messages": msgs,
		"items":    chat.BuildFeed(msgs, time.Now()),
	})
}

type sendRequest struct {
	Text string `json:"text"`
}

// handleSend sends a message to the user identified by the uid path param.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())
	otherUID := chi.URLParam(r, "uid")

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	recipient, err := s.users.GetUserByID(r.Context(), otherUID)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "recipient not found")
			return
		}
		s.logger.Error("looking up recipient", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	otherName := recipient.DisplayName
	if otherName == "" {
		otherName = recipient.Email
	}

	msg, err := s.engine.Send(r.Context(), sess, otherUID, otherName, req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			respondError(w, http.StatusBadRequest, "message text is empty")
			return
		}
		s.logger.Error("sending message", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}

// handleMarkRead zeroes the caller's unread counter for one conversation.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	s.engine.MarkRead(r.Context(), sess, chi.URLParam(r, "uid"))

	w.WriteHeader(http.StatusNoContent)
}

// handleProfile returns the caller's own user document.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	user, err := s.users.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("loading profile", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

type profileUpdateRequest struct {
	DisplayName *string `json:"display_name"`
	Status      *string `json:"status"`
}

// handleProfileUpdate changes the display name and/or status text. Existing
// chat documents keep their old display-name snapshots until the next send.
func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if len(name) < 2 {
			respondError(w, http.StatusBadRequest, "display name must be at least 2 characters")
			return
		}
		if err := s.users.UpdateDisplayName(r.Context(), sess.UserID, name); err != nil {
			s.logger.Error("updating display name", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	if req.Status != nil {
		if err := s.users.UpdateStatus(r.Context(), sess.UserID, strings.TrimSpace(*req.Status)); err != nil {
			s.logger.Error("updating status", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	s.handleProfile(w, r)
}

// handleAvatarUpload stores a new profile image and records its URL.
func (s *Server) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFromContext(r.Context())

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	url, err := s.avatars.UploadAvatar(r.Context(), sess.UserID, file, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		s.logger.Error("uploading avatar", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.users.UpdatePhotoURL(r.Context(), sess.UserID, url); err != nil {
		s.logger.Error("recording avatar url", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"photo_url": url})
}
