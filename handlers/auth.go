package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"zennote/apperr"
	"zennote/auth"
	"zennote/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
	Configured() bool
}

type AuthHandler struct {
	users      UserRepository
	tokens     TokenIssuer
	bcryptCost int
	log        *slog.Logger
}

func NewAuthHandler(users UserRepository, tokens TokenIssuer, bcryptCost int, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var authMessages = map[string]string{
	"name":     "Name is required",
	"email":    "Enter a valid email",
	"password": "Password must be at least 6 chars",
}

var loginMessages = map[string]string{
	"email":    "Enter a valid email",
	"password": "Password is required",
}

type authResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    models.UserSummary `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req, "", authMessages); err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	if !h.tokens.Configured() {
		WriteError(w, r, h.log, auth.ErrMissingSecret)
		return
	}

	ctx := r.Context()
	_, err := h.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		WriteError(w, r, h.log, apperr.Conflict("Email already in use"))
		return
	case !errors.Is(err, apperr.ErrNotFound):
		WriteError(w, r, h.log, err)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	user := &models.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
	if err := h.users.Create(ctx, user); err != nil {
		WriteError(w, r, h.log, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	h.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	WriteJSON(w, http.StatusCreated, authResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   token,
		User:    user.Summary(),
	})
}

// Login answers the same InvalidCredentials error for an unknown email and a
// wrong password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req, "", loginMessages); err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	if !h.tokens.Configured() {
		WriteError(w, r, h.log, auth.ErrMissingSecret)
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			auth.BurnCompare(req.Password)
			err = apperr.InvalidCredentials()
		}
		WriteError(w, r, h.log, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		WriteError(w, r, h.log, apperr.InvalidCredentials())
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	WriteJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    user.Summary(),
	})
}

// GetUser returns the summary of the authenticated caller.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, r, h.log, apperr.Unauthenticated("Access denied: No token provided"))
		return
	}
	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		WriteError(w, r, h.log, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": user.Summary()})
}
