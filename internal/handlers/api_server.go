// internal/handlers/api_server.go
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ratedrps/ratedrps-service/internal/auth"
	"github.com/ratedrps/ratedrps-service/internal/database"
	"github.com/ratedrps/ratedrps-service/internal/models"
	"github.com/ratedrps/ratedrps-service/internal/storage"
	"github.com/sirupsen/logrus"
)

// PlayerStore is the read side of the statistics store plus the avatar path update.
type PlayerStore interface {
	GetUser(ctx context.Context, playerID string) (models.Stats, error)
	TopPlayers(ctx context.Context, limit int) ([]models.Stats, error)
	MatchesForPlayer(ctx context.Context, playerID string, limit int) ([]models.MatchRecord, error)
	RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error)
	UpdateAvatarURL(ctx context.Context, playerID, url string) error
}

// AvatarStore holds profile images.
type AvatarStore interface {
	Upload(ctx context.Context, playerID, filename, contentType string, size int64, body io.Reader) (key, url string, err error)
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// APIServer serves the REST endpoints next to the game socket. Either collaborator may be
// nil, in which case its endpoints answer 503.
type APIServer struct {
	logger  *logrus.Logger
	store   PlayerStore
	avatars AvatarStore

	// MaxUploadBytes caps the multipart body. It should be a little above the avatar limit
	// so the size error comes from the avatar store.
	MaxUploadBytes int64
}

func NewAPIServer(logger *logrus.Logger, store PlayerStore, avatars AvatarStore) *APIServer {
	return &APIServer{
		logger:         logger,
		store:          store,
		avatars:        avatars,
		MaxUploadBytes: 6 << 20,
	}
}

// Routes mounts the API on r.
func (s *APIServer) Routes(r chi.Router) {
	r.Get("/api/health_check", s.HealthCheck)
	r.Get("/api/leaderboard", s.Leaderboard)
	r.Get("/api/matches/recent", s.RecentMatches)
	r.Post("/api/users/upload-avatar", s.UploadAvatar)
	r.Get("/api/users/avatar/{userId}/{filename}", s.GetAvatar)
	r.Get("/api/users/{userId}", s.GetUser)
	r.Get("/api/users/{userId}/matches", s.UserMatches)
}

func (s *APIServer) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Server is running"))
}

func (s *APIServer) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	top, err := s.store.TopPlayers(r.Context(), parseLimit(r, 10, 100))
	if err != nil {
		s.logger.Errorf("leaderboard query failed: %v", err)
		http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (s *APIServer) GetUser(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	u, err := s.store.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if errors.Is(err, database.ErrPlayerNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Errorf("user lookup failed: %v", err)
		http.Error(w, "failed to load user", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *APIServer) UserMatches(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	recs, err := s.store.MatchesForPlayer(r.Context(), chi.URLParam(r, "userId"), parseLimit(r, 20, 100))
	if err != nil {
		s.logger.Errorf("match history query failed: %v", err)
		http.Error(w, "failed to load matches", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *APIServer) RecentMatches(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	recs, err := s.store.RecentMatches(r.Context(), parseLimit(r, 10, 100))
	if err != nil {
		s.logger.Errorf("recent matches query failed: %v", err)
		http.Error(w, "failed to load matches", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

type avatarResponse struct {
	Success    bool   `json:"success"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
	AvatarPath string `json:"avatarPath,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

// UploadAvatar stores the multipart field "avatar" for the authenticated player and points
// their profile at it.
func (s *APIServer) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if s.avatars == nil || s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, avatarResponse{Error: "Avatar storage is not configured"})
		return
	}
	playerID, err := auth.AuthenticateJWT(tokenFromRequest(r))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, avatarResponse{Error: "Unauthorized"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusBadRequest, avatarResponse{Error: "File size must be less than 5MB"})
			return
		}
		writeJSON(w, http.StatusBadRequest, avatarResponse{Error: "No file uploaded"})
		return
	}
	defer file.Close()

	key, url, err := s.avatars.Upload(r.Context(), playerID, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		writeJSON(w, http.StatusBadRequest, avatarResponse{Error: "File size must be less than 5MB"})
		return
	case errors.Is(err, storage.ErrUnsupportedImage):
		writeJSON(w, http.StatusBadRequest, avatarResponse{Error: "Only image files are allowed"})
		return
	case err != nil:
		s.logger.Errorf("avatar upload for %s failed: %v", playerID, err)
		writeJSON(w, http.StatusInternalServerError, avatarResponse{Error: "Failed to upload avatar"})
		return
	}

	if err := s.store.UpdateAvatarURL(r.Context(), playerID, key); err != nil {
		s.logger.Errorf("avatar path update for %s failed: %v", playerID, err)
		writeJSON(w, http.StatusInternalServerError, avatarResponse{Error: "Failed to update profile"})
		return
	}

	writeJSON(w, http.StatusOK, avatarResponse{
		Success:    true,
		AvatarURL:  url,
		AvatarPath: key,
		Message:    "Avatar uploaded successfully",
	})
}

// GetAvatar streams an avatar object.
func (s *APIServer) GetAvatar(w http.ResponseWriter, r *http.Request) {
	if s.avatars == nil {
		http.NotFound(w, r)
		return
	}
	key := chi.URLParam(r, "userId") + "/" + chi.URLParam(r, "filename")
	body, contentType, err := s.avatars.Download(r.Context(), key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warnf("avatar download %s failed: %v", key, err)
		}
		http.NotFound(w, r)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, body); err != nil {
		s.logger.Debugf("avatar stream %s interrupted: %v", key, err)
	}
}

func (s *APIServer) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		http.Error(w, "statistics store unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}
