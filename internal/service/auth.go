package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xjinkx/license-gateway/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	admins    AdminStore
	users     UserStore
	jwtSecret []byte // Stored in env (JWT_SECRET)
	jwtExpiry time.Duration
}

func NewAuthService(admins AdminStore, users UserStore, secret string, expiryHours int) *AuthService {
	return &AuthService{
		admins:    admins,
		users:     users,
		jwtSecret: []byte(secret),
		jwtExpiry: time.Duration(expiryHours) * time.Hour,
	}
}

// RegisterAdmin creates a new admin user
func (s *AuthService) RegisterAdmin(ctx context.Context, email, password, name string) error {
	existing, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("user with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         "admin",
	}

	return s.admins.Create(ctx, admin)
}

// LoginAdmin authenticates an admin and returns a JWT token
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (string, error) {
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	return s.signToken(jwt.MapClaims{
		"user_id": admin.ID.String(),
		"email":   admin.Email,
		"role":    admin.Role,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	})
}

// EstablishSession finds or creates the storefront user for a Discord
// identity and mints their session token. The site backend calls this after
// its OAuth callback resolves who the visitor is.
func (s *AuthService) EstablishSession(ctx context.Context, discordID, name string) (string, *models.User, error) {
	user, err := s.users.FindByDiscordID(ctx, discordID)
	if err != nil {
		return "", nil, err
	}

	if user == nil {
		user = &models.User{DiscordID: discordID, Name: name}
		if err := s.users.Create(ctx, user); err != nil {
			return "", nil, err
		}
	}

	token, err := s.IssueSession(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// IssueSession mints a session token for an already-resolved user.
func (s *AuthService) IssueSession(user *models.User) (string, error) {
	return s.signToken(jwt.MapClaims{
		"user_id":    user.ID.String(),
		"discord_id": user.DiscordID,
		"role":       "user",
		"exp":        time.Now().Add(s.jwtExpiry).Unix(),
		"iat":        time.Now().Unix(),
	})
}

func (s *AuthService) signToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
