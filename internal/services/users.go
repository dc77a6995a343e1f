package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"nuncio/internal/models"
	"nuncio/internal/utils"
	"strings"

	"gorm.io/gorm"
)

const (
	maxUsernameLen    = 64
	maxEmailLen       = 120
	minPasswordLength = 6
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (in *RegisterInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" {
		return invalid("username", "username is required")
	}
	if len([]rune(in.Username)) > maxUsernameLen {
		return invalid("username", "username is longer than %d characters", maxUsernameLen)
	}
	if strings.ContainsAny(in.Username, " /?#") {
		return invalid("username", "username cannot contain spaces or / ? #")
	}
	if len(in.Email) > maxEmailLen {
		return invalid("email", "email is longer than %d characters", maxEmailLen)
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return invalid("email", "not a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		return invalid("password", "password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// Register creates a user with a hashed password. Duplicate usernames or
// emails are reported as ErrConflict and leave no row behind.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleUser,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("username %q: %w", in.Username, ErrConflict)
		}
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("email %q: %w", in.Email, ErrConflict)
		}
		// The unique indexes still guard against a concurrent registration.
		return translate(tx.Create(&user).Error, "create user")
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks a username/password pair.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// RecalculateScore sets a user's aggregate score to the sum of the scores of
// the posts they own. It always sums from scratch so the cached value cannot
// drift; call it through the transaction that changed a post score.
func RecalculateScore(tx *gorm.DB, userID uint) (int, error) {
	var total int
	err := tx.Model(&models.Post{}).
		Select("COALESCE(SUM(score), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum scores of user %d: %w", userID, err)
	}
	if err := tx.Model(&models.User{}).Where("id = ?", userID).UpdateColumn("score", total).Error; err != nil {
		return 0, fmt.Errorf("store score of user %d: %w", userID, err)
	}
	return total, nil
}
