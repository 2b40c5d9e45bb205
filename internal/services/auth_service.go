package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"barter/internal/domain"
	"barter/internal/repos"
	"barter/internal/validate"
)

const bcryptCost = 12

type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
	TTL    time.Duration
	Cost   int // bcrypt cost
	Now    func() time.Time
}

func NewAuthService(users *repos.UserRepo, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{Users: users, Secret: []byte(secret), TTL: ttl, Cost: bcryptCost, Now: time.Now}
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, in Registration) (*domain.User, string, error) {
	verr := &domain.ValidationError{}
	username, ok := validate.Username(in.Username)
	if !ok {
		verr.Add("username", "4-150 characters: letters, digits and @/./+/-/_ only")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		verr.Add("email", "enter a valid email address")
	}
	if !validate.Password(in.Password) {
		verr.Add("password", "must be at least 8 characters")
	}
	if err := verr.OrNil(); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.Cost)
	if err != nil {
		return nil, "", err
	}
	id, err := s.Users.Create(ctx, username, email, string(hash), stamp(s.Now))
	if errors.Is(err, domain.ErrConflict) {
		return nil, "", domain.NewValidationError("username", "a user with that username already exists")
	}
	if err != nil {
		return nil, "", err
	}
	u := &domain.User{ID: id, Username: username, Email: email}
	tok, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	u, err := s.Users.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrBadCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", domain.ErrBadCredentials
	}
	tok, err := s.issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (s *AuthService) issue(u *domain.User) (string, error) {
	now := s.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(u.ID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Resolve turns a bearer token into the principal it was issued to. Tokens of
// users that no longer exist are rejected.
func (s *AuthService) Resolve(ctx context.Context, token string) (domain.Principal, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.Now), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Anonymous, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id < 1 {
		return domain.Anonymous, fmt.Errorf("%w: bad subject", domain.ErrUnauthenticated)
	}
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Anonymous, fmt.Errorf("%w: unknown user", domain.ErrUnauthenticated)
		}
		return domain.Anonymous, err
	}
	return domain.PrincipalFor(u), nil
}

func stamp(now func() time.Time) string {
	if now == nil {
		now = time.Now
	}
	return now().UTC().Format(domain.TimeLayout)
}
