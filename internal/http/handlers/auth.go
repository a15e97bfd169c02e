package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
	"server/internal/middleware"
)

const tokenTTL = 30 * time.Minute

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an account and returns a session token.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "failed to register user")
		return
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			a.error(w, http.StatusBadRequest, "email already registered")
			return
		}
		a.Logger.Error().Err(err).Msg("auth: register failed")
		a.error(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	a.issueToken(w, http.StatusCreated, user)
}

// Login verifies credentials and returns a session token.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := a.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		a.error(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		a.error(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	a.issueToken(w, http.StatusOK, user)
}

func (a *App) issueToken(w http.ResponseWriter, code int, user *domain.User) {
	token, err := middleware.SignToken(a.Config.JWTSecret, user.ID, user.Email, tokenTTL)
	if err != nil {
		a.Logger.Error().Err(err).Msg("auth: token signing failed")
		a.error(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	a.json(w, code, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
