package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"shopsphere/apperror"
	"shopsphere/models"
	"shopsphere/repository"
)

const bcryptCost = 10

type AuthService struct {
	users  repository.UserStore
	tokens repository.TokenStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Claims struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a customer account. Roles cannot be chosen by the caller.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.CreateUser(ctx, in, models.RoleCustomer)
}

// CreateUser creates an account with the given role.
func (s *AuthService) CreateUser(ctx context.Context, in RegisterInput, role string) (*models.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if role != models.RoleCustomer && role != models.RoleAdmin {
		return nil, apperror.Validation("Unknown role %q", role)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	u := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  string(hashed),
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.Conflict("Email already registered")
		}
		return nil, apperror.Unexpected(err)
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(in.Email))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperror.Auth("Invalid email or password")
	case err != nil:
		return nil, apperror.Unexpected(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		return nil, apperror.Auth("Invalid email or password")
	}

	token, err := s.issue(u)
	if err != nil {
		return nil, apperror.Unexpected(err)
	}
	return &Session{User: u, Token: token}, nil
}

func (s *AuthService) issue(u *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: u.ID.Hex(),
		Name:   u.Name,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Authenticate resolves a bearer token to the caller it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, apperror.Auth("Token required")
	}
	revoked, err := s.tokens.IsRevoked(ctx, token)
	if err != nil {
		return Identity{}, apperror.Unexpected(err)
	}
	if revoked {
		return Identity{}, apperror.Auth("Token has been revoked")
	}
	claims, err := s.parse(token)
	if err != nil {
		return Identity{}, apperror.Auth("Invalid or expired token").WithCause(err)
	}
	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return Identity{}, apperror.Auth("Invalid or expired token").WithCause(err)
	}
	return Identity{UserID: uid, Name: claims.Name, Role: claims.Role}, nil
}

// Logout revokes token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return apperror.Validation("Token required")
	}
	claims, err := s.parse(token)
	if err != nil {
		return apperror.Auth("Invalid token").WithCause(err)
	}
	exp := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := s.tokens.Revoke(ctx, token, exp); err != nil {
		return apperror.Unexpected(err)
	}
	return nil
}
