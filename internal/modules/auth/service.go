package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"locamat/internal/domain"
	jwtsvc "locamat/internal/pkg/jwt"
)

type Service struct {
	db     *gorm.DB
	tokens *jwtsvc.Service
}

func NewService(db *gorm.DB, tokens *jwtsvc.Service) *Service {
	return &Service{db: db, tokens: tokens}
}

// Login checks a staff user's password and issues a signed token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.StaffUser, error) {
	var user domain.StaffUser
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}
