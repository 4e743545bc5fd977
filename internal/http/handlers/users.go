package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"usermgmt/internal/auth"
	"usermgmt/internal/http/respond"
	"usermgmt/internal/models"
	"usermgmt/internal/models/dto"
	"usermgmt/internal/storage"
)

// UserHandler owns the /api/users endpoints: login, token lifecycle, and
// role-gated CRUD on user records.
type UserHandler struct {
	store   storage.UserStore
	tokens  *auth.TokenManager
	revoked *auth.Denylist
}

// NewUserHandler constructs the handler.
func NewUserHandler(store storage.UserStore, tokens *auth.TokenManager, revoked *auth.Denylist) *UserHandler {
	return &UserHandler{store: store, tokens: tokens, revoked: revoked}
}

// Routes builds the user router. Everything except login sits behind the
// supplied authentication middleware.
func (h *UserHandler) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(authn)
		pr.Get("/", h.list)
		pr.Post("/", h.create)
		pr.Post("/logout", h.logout)
		pr.Post("/refresh", h.refresh)
		pr.Post("/me", h.me)
		pr.Put("/{id}", h.update)
		pr.Delete("/{id}", h.delete)
	})
	return r
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.store.FindByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		log.Printf("login: fetch user failed: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respond.JSON(w, http.StatusOK, "Success", identity.User, nil)
}

func (h *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.revoked.Revoke(r.Context(), identity.Claims.ID, identity.Claims.ExpiresAt.Time); err != nil {
		log.Printf("logout: revoke token failed: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to invalidate token")
		return
	}
	respond.JSON(w, http.StatusOK, "Successfully logged out", nil, nil)
}

func (h *UserHandler) refresh(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	// Rotation: the presented token stops working once its replacement is
	// issued.
	if err := h.revoked.Revoke(r.Context(), identity.Claims.ID, identity.Claims.ExpiresAt.Time); err != nil {
		log.Printf("refresh: revoke old token failed: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}
	h.respondWithToken(w, http.StatusOK, identity.User)
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok || !auth.Authorize(&identity.User, models.RoleAdmin) {
		respond.Error(w, http.StatusForbidden, "Only ADMIN users can create")
		return
	}

	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	// Role is fixed at creation; there is no endpoint that grants ADMIN.
	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		CreatedBy:    req.CreatedBy,
	}
	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "Username already exists")
			return
		}
		log.Printf("create user: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	respond.JSON(w, http.StatusCreated, "Success", created, nil)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok || !auth.Authorize(&identity.User, models.RoleAdmin) {
		respond.Error(w, http.StatusForbidden, "Only ADMIN users can list users")
		return
	}

	// Administrators never appear in listings, filtered or not.
	users, err := h.store.ListExcludingRole(r.Context(), models.RoleAdmin, strings.TrimSpace(r.URL.Query().Get("username")))
	if err != nil {
		log.Printf("list users: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respond.JSON(w, http.StatusOK, "Success", users, nil)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok || !auth.Authorize(&identity.User, models.RoleAdmin) {
		respond.Error(w, http.StatusForbidden, "Only ADMIN users can update")
		return
	}

	id, err := pathID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		respond.Error(w, http.StatusBadRequest, "username is required")
		return
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("update user: fetch %d failed: %v", id, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	user.Username = username
	// An empty password means "keep the current one"; only a non-empty
	// value is re-hashed.
	if req.Password != "" {
		passwordHash, err := hashPassword(req.Password)
		if err != nil {
			respond.Error(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		user.PasswordHash = passwordHash
	}

	updated, err := h.store.UpdateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "username already exists")
			return
		}
		log.Printf("update user %d: %v", id, err)
		respond.Error(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	respond.JSON(w, http.StatusOK, "Success", updated, nil)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	// Token validity is required by the router; there is deliberately no
	// role gate here.
	id, err := pathID(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("delete user: fetch %d failed: %v", id, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("delete user %d: %v", id, err)
		respond.Error(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	respond.JSON(w, http.StatusOK, "Success", user, nil)
}

func (h *UserHandler) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		log.Printf("generate token for user %d: %v", user.ID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, status, "Success", dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   h.tokens.TTLSeconds(),
	}, nil)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
