package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/config"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

const refreshTokenBytes = 32

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (*models.MeResponse, error)
	ParseAccessToken(token string) (uuid.UUID, error)
}

type authService struct {
	users    repositories.UserRepository
	tokens   repositories.RefreshTokenRepository
	profiles repositories.ProfileRepository
	subs     repositories.SubscriptionRepository
	cfg      config.AuthConfig
	log      *slog.Logger
	now      func() time.Time
}

func NewAuthService(
	users repositories.UserRepository,
	tokens repositories.RefreshTokenRepository,
	profiles repositories.ProfileRepository,
	subs repositories.SubscriptionRepository,
	cfg config.AuthConfig,
	log *slog.Logger,
) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		profiles: profiles,
		subs:     subs,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("email already registered")
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: req.Email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &models.Profile{UserID: user.ID}
	profile.FirstName = req.FirstName
	profile.LastName = req.LastName
	profile.Email = user.Email
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID)
	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Authentication("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Authentication("invalid email or password")
	}

	return s.issue(ctx, user)
}

// Refresh rotates the refresh token: the presented one is revoked and a new pair issued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	stored, err := s.tokens.FindActiveByHash(ctx, hashToken(refreshToken), s.now())
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Authentication("invalid or expired refresh token")
		}
		return nil, err
	}

	if err := s.tokens.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Authentication("invalid or expired refresh token")
		}
		return nil, err
	}

	return s.issue(ctx, user)
}

// Logout revokes every refresh token of the user. Access tokens expire on their own.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*models.MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	sub, err := s.subs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.MeResponse{User: user, Profile: profile, Subscription: sub}, nil
}

func (s *authService) ParseAccessToken(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return uuid.Nil, apperrors.Authentication("invalid or expired access token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperrors.Authentication("invalid access token subject")
	}
	return userID, nil
}

func (s *authService) issue(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refresh),
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL),
	}); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		User: user,
		Session: &models.Session{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    expiresAt.Unix(),
			ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
		},
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func newRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}
