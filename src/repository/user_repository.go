package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository() *UserRepository {
	logger.WithField("component", "UserRepository").
		Info("Creating new UserRepository with MainDB")

	return &UserRepository{
		db: database.MainDB,
	}
}

func (r *UserRepository) WithDB(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user. A duplicate email surfaces as a
// ValidationError so the handler can report it as a client fault.
func (r *UserRepository) CreateUser(
	ctx context.Context,
	user *model.User,
) error {

	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &ValidationError{Field: "email", Reason: "already registered"}
		}

		logger.WithFields(map[string]interface{}{
			"repo": "UserRepository",
			"op":   "CreateUser",
		}).WithError(err).Error("Failed to create user")

		return &StoreError{Op: "create user", Err: err}
	}

	logger.WithFields(map[string]interface{}{
		"repo":    "UserRepository",
		"op":      "CreateUser",
		"user_id": user.ID,
	}).Info("User created successfully")

	return nil
}

// FindByEmail returns ErrNotFound when no user has the email.
func (r *UserRepository) FindByEmail(
	ctx context.Context,
	email string,
) (*model.User, error) {

	var u model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "find user by email", Err: err}
	}

	return &u, nil
}

// CreateSession stores a freshly issued bearer token.
func (r *UserRepository) CreateSession(
	ctx context.Context,
	session *model.Session,
) error {

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "UserRepository",
			"op":      "CreateSession",
			"user_id": session.UserID,
		}).WithError(err).Error("Failed to create session")

		return &StoreError{Op: "create session", Err: err}
	}

	return nil
}

// DeleteSession revokes a bearer token. Deleting an unknown token is
// not an error.
func (r *UserRepository) DeleteSession(
	ctx context.Context,
	token string,
) error {

	if err := r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&model.Session{}).Error; err != nil {
		return &StoreError{Op: "delete session", Err: err}
	}

	return nil
}

// ResolveToken maps a bearer token to its user. Expired or unknown
// tokens return ErrNotFound.
func (r *UserRepository) ResolveToken(
	ctx context.Context,
	token string,
) (*model.User, error) {

	var session model.Session
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "resolve token", Err: err}
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, ErrNotFound
	}

	var u model.User
	err = r.db.WithContext(ctx).
		Where("id = ?", session.UserID).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "resolve token", Err: err}
	}

	return &u, nil
}
