package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"
)

const sessionTTL = 30 * 24 * time.Hour

type userStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	CreateSession(ctx context.Context, session *model.Session) error
	DeleteSession(ctx context.Context, token string) error
}

// RegisterHandler creates a new account from an email and password.
func RegisterHandler(users userStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.RegisterPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid register payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))
		if payload.Email == "" || payload.Password == "" {
			http.Error(w, "Email and password are required", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.WithError(err).Error("failed to hash password")
			http.Error(w, "Unable to register", http.StatusInternalServerError)
			return
		}

		user := &model.User{
			Email:    payload.Email,
			Password: string(hashedPassword),
		}

		if err := users.CreateUser(r.Context(), user); err != nil {
			writeRepoError(w, err, "create user")
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

// LoginHandler verifies the credentials and issues a bearer token.
func LoginHandler(users userStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.LoginPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid login payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))

		user, err := users.FindByEmail(r.Context(), payload.Email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				http.Error(w, "Invalid credentials", http.StatusUnauthorized)
				return
			}
			logger.WithError(err).Error("failed to look up user for login")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
			logger.WithField("user_id", user.ID).Warn("password mismatch on login")
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		session := &model.Session{
			Token:     uuid.NewString(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(sessionTTL),
		}

		if err := users.CreateSession(r.Context(), session); err != nil {
			writeRepoError(w, err, "create session")
			return
		}

		writeJSON(w, http.StatusOK, model.LoginResponse{
			Token:     session.Token,
			UserID:    user.ID,
			ExpiresAt: session.ExpiresAt,
		})
	}
}

// LogoutHandler revokes the presented bearer token.
func LogoutHandler(users userStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.TokenFromRequest(r)
		if token == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if err := users.DeleteSession(r.Context(), token); err != nil {
			writeRepoError(w, err, "delete session")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
