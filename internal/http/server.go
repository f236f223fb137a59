package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mann-lohchab/Portal/internal/config"
	"github.com/Mann-lohchab/Portal/internal/crypto"
	"github.com/Mann-lohchab/Portal/internal/model"
	"github.com/Mann-lohchab/Portal/internal/ratelimit"
	"github.com/Mann-lohchab/Portal/internal/service"
)

// Store is the repository surface the HTTP layer needs. Both the pgx-backed
// store and the in-memory store satisfy it.
type Store interface {
	service.PrincipalStore
	GetByID(ctx context.Context, role model.Role, id string) (model.Principal, error)
	Create(ctx context.Context, p model.Principal) error
	List(ctx context.Context, role model.Role, limit int) ([]model.Principal, error)
	Delete(ctx context.Context, role model.Role, externalID string) (bool, error)
}

type Server struct {
	cfg     config.Config
	store   Store
	auth    *service.Auth
	limiter *ratelimit.LoginLimiter
}

func NewServer(cfg config.Config, store Store, authService *service.Auth, limiter *ratelimit.LoginLimiter) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		auth:    authService,
		limiter: limiter,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/{role}/login", s.handleLogin)
	r.Post("/auth/{role}/logout", s.handleLogout)
	r.With(s.authMiddleware).Get("/auth/me", s.handleGetMe)

	r.Route("/students", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireRole(model.RoleAdmin))
		r.Post("/", s.handleCreatePrincipal(model.RoleStudent))
		r.Get("/", s.handleListPrincipals(model.RoleStudent))
		r.Get("/{externalID}", s.handleGetPrincipal(model.RoleStudent))
		r.Delete("/{externalID}", s.handleDeletePrincipal(model.RoleStudent))
	})

	r.Route("/teachers", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireRole(model.RoleAdmin))
		r.Post("/", s.handleCreatePrincipal(model.RoleTeacher))
		r.Get("/", s.handleListPrincipals(model.RoleTeacher))
		r.Get("/{externalID}", s.handleGetPrincipal(model.RoleTeacher))
		r.Delete("/{externalID}", s.handleDeletePrincipal(model.RoleTeacher))
	})

	return r
}

type loginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    model.Summary `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	role, ok := model.ParseRole(chi.URLParam(r, "role"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_role")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.ID = strings.TrimSpace(req.ID)

	if err := s.limiter.Allow(r.Context(), role.String(), req.ID); err != nil {
		writeError(w, http.StatusTooManyRequests, "too_many_attempts")
		return
	}

	result, err := s.auth.Login(r.Context(), role, req.ID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, "missing_credentials")
		case errors.Is(err, service.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found")
		case errors.Is(err, service.ErrInvalidCredentials):
			s.limiter.RecordFailure(r.Context(), role.String(), req.ID)
			writeError(w, http.StatusBadRequest, "invalid_credentials")
		default:
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}
	s.limiter.Reset(r.Context(), role.String(), req.ID)

	setSessionCookie(w, role, result.Token, s.cfg.TokenTTL)
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Welcome " + result.Principal.DisplayName(),
		Token:   result.Token,
		User:    result.Principal.Summary(),
	})
}

// handleLogout always answers 200. The client is dropping its credentials
// either way; a token that no longer verifies must not block that.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	role, ok := model.ParseRole(chi.URLParam(r, "role"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_role")
		return
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		if cookie, err := r.Cookie(sessionCookieName(role)); err == nil {
			token = cookie.Value
		}
	}
	s.auth.Logout(r.Context(), token)

	clearSessionCookie(w, role)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	writeJSON(w, http.StatusOK, principal.Summary())
}

type createPrincipalRequest struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (s *Server) handleCreatePrincipal(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPrincipalRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		req.ID = strings.TrimSpace(req.ID)
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.ID == "" || req.FirstName == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "missing_fields")
			return
		}

		if _, err := s.store.GetByExternalID(r.Context(), role, req.ID); err == nil {
			writeError(w, http.StatusConflict, "already_exists")
			return
		} else if !errors.Is(err, model.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}

		hash, err := crypto.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "password_hash_failed")
			return
		}

		now := time.Now().UTC()
		principal := model.Principal{
			ID:           uuid.NewString(),
			ExternalID:   req.ID,
			Role:         role,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.store.Create(r.Context(), principal); err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}

		writeJSON(w, http.StatusCreated, principal.Summary())
	}
}

func (s *Server) handleListPrincipals(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 200
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		principals, err := s.store.List(r.Context(), role, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}

		summaries := make([]model.Summary, 0, len(principals))
		for _, p := range principals {
			summaries = append(summaries, p.Summary())
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

func (s *Server) handleGetPrincipal(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalID := chi.URLParam(r, "externalID")
		if externalID == "" {
			writeError(w, http.StatusBadRequest, "missing_id")
			return
		}

		principal, err := s.store.GetByExternalID(r.Context(), role, externalID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not_found")
				return
			}
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		writeJSON(w, http.StatusOK, principal.Summary())
	}
}

func (s *Server) handleDeletePrincipal(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalID := chi.URLParam(r, "externalID")
		if externalID == "" {
			writeError(w, http.StatusBadRequest, "missing_id")
			return
		}

		deleted, err := s.store.Delete(r.Context(), role, externalID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		if !deleted {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// authMiddleware runs both halves of request authentication: the token must
// verify, and the principal's server-side session must still cover it.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}

		claims, err := s.auth.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}

		principal, err := s.auth.CheckSession(r.Context(), claims)
		if err != nil {
			if errors.Is(err, service.ErrSessionInactive) || errors.Is(err, service.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "session_inactive")
				return
			}
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, &principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := principalFromContext(r.Context())
			if principal == nil || principal.Role != role {
				writeError(w, http.StatusForbidden, string(role)+"_only")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type principalKey struct{}

func principalFromContext(ctx context.Context) *model.Principal {
	principal, _ := ctx.Value(principalKey{}).(*model.Principal)
	return principal
}

func sessionCookieName(role model.Role) string {
	return string(role) + "_token"
}

func setSessionCookie(w http.ResponseWriter, role model.Role, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName(role),
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, role model.Role) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName(role),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
