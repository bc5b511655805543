package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/egannguyen/petsupplies/internal/entity"
	"github.com/egannguyen/petsupplies/internal/repository"
)

const tokenIssuer = "petsupplies"

// AuthService registers sellers and issues and verifies their bearer tokens.
type AuthService struct {
	sellers repository.SellerRepository
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

func NewAuthService(sellers repository.SellerRepository, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{sellers: sellers, secret: secret, ttl: ttl, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, reg entity.SellerRegistration) (string, *entity.Seller, error) {
	if err := reg.Validate(); err != nil {
		return "", nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	seller := entity.Seller{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(reg.Name),
		Email:        strings.ToLower(strings.TrimSpace(reg.Email)),
		Phone:        reg.Phone,
		Address:      reg.Address,
		BusinessType: reg.BusinessType,
		JoinedAt:     s.now(),
		PasswordHash: hash,
	}
	if err := s.sellers.Create(ctx, seller); err != nil {
		return "", nil, err
	}
	slog.Info("Service: Seller registered", "seller_id", seller.ID)

	token, err := s.issue(seller.ID)
	if err != nil {
		return "", nil, err
	}
	return token, &seller, nil
}

// Login checks the password. Unknown email and wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *entity.Seller, error) {
	seller, err := s.sellers.FindByEmail(ctx, email)
	if entity.IsNotFound(err) {
		return "", nil, entity.NewAuthenticationRequiredError("invalid email or password")
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword(seller.PasswordHash, []byte(password)); err != nil {
		return "", nil, entity.NewAuthenticationRequiredError("invalid email or password")
	}

	token, err := s.issue(seller.ID)
	if err != nil {
		return "", nil, err
	}
	return token, seller, nil
}

func (s *AuthService) issue(sellerID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   sellerID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Authenticate returns the seller id carried by a valid token.
func (s *AuthService) Authenticate(token string) (string, error) {
	if token == "" {
		return "", entity.NewAuthenticationRequiredError("")
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", entity.NewAuthenticationRequiredError("token expired")
	}
	if err != nil || claims.Subject == "" {
		return "", entity.NewAuthenticationRequiredError("invalid token")
	}
	return claims.Subject, nil
}

func (s *AuthService) Profile(ctx context.Context, sellerID string) (*entity.Seller, error) {
	return s.sellers.FindByID(ctx, sellerID)
}
