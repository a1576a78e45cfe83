package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"guild-chat/config"
	"guild-chat/internal/domain/user"
	"guild-chat/internal/repository"
	guild_errors "guild-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo   repository.UserRepository
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(cfg.JWTSecret),
		accessTTL:  time.Duration(cfg.JWTExpiryMin) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshExpiry) * 24 * time.Hour,
	}
}

type RegisterInput struct {
	Email       string
	Username    string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Identity string
	Password string
}

type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	ExpiresIn    int64    `json:"expires_in"`
	SessionID    string   `json:"session_id"`
	User         UserInfo `json:"user"`
}

type UserInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
}

type AccessClaims struct {
	UserID    string `json:"sub"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	if err := validateRegister(in); err != nil {
		return AuthResponse{}, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return AuthResponse{}, guild_errors.ErrAlreadyExists
	}
	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return AuthResponse{}, guild_errors.ErrAlreadyExists
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return AuthResponse{}, err
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return AuthResponse{}, err
	}

	return s.issueTokens(ctx, *newUser)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	if in.Identity == "" || in.Password == "" {
		return AuthResponse{}, guild_errors.ErrInvalidInput
	}

	u, err := s.getUserByIdentity(ctx, in.Identity)
	if err != nil {
		return AuthResponse{}, guild_errors.ErrUnauthorized
	}

	if err := comparePassword(u.PasswordHash, in.Password); err != nil {
		return AuthResponse{}, guild_errors.ErrUnauthorized
	}

	_ = s.userRepo.UpdateOnlineStatus(ctx, u.ID, true)

	return s.issueTokens(ctx, u)
}

func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.userRepo.RevokeSession(ctx, sessionID)
}

func (s *AuthService) issueTokens(ctx context.Context, u user.User) (AuthResponse, error) {
	refreshToken, err := generateToken(32)
	if err != nil {
		return AuthResponse{}, err
	}

	createdAt := time.Now()
	session := &user.UserSession{
		ID:           uuid.New(),
		UserID:       u.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    createdAt.Add(s.refreshTTL),
		CreatedAt:    createdAt,
	}

	if err := s.userRepo.CreateSession(ctx, session); err != nil {
		return AuthResponse{}, err
	}

	accessToken, expiresIn, err := s.newAccessToken(u.ID, session.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		SessionID:    session.ID.String(),
		User: UserInfo{
			ID:          u.ID.String(),
			DisplayName: u.DisplayName,
			Username:    u.Username,
			Email:       u.Email,
		},
	}, nil
}

func (s *AuthService) newAccessToken(userID, sessionID uuid.UUID) (string, int64, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:    userID.String(),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.accessTTL.Seconds()), nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	if tokenString == "" {
		return nil, guild_errors.ErrUnauthorized
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, guild_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, guild_errors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) ValidateSession(ctx context.Context, sessionID, userID uuid.UUID) (user.UserSession, error) {
	session, err := s.userRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return user.UserSession{}, guild_errors.ErrUnauthorized
	}
	if session.UserID != userID || session.RevokedAt.Valid || time.Now().After(session.ExpiresAt) {
		return user.UserSession{}, guild_errors.ErrUnauthorized
	}
	return session, nil
}

func (s *AuthService) getUserByIdentity(ctx context.Context, identity string) (user.User, error) {
	if strings.Contains(identity, "@") {
		return s.userRepo.GetByEmail(ctx, identity)
	}
	return s.userRepo.GetByUsername(ctx, identity)
}

func validateRegister(in RegisterInput) error {
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return guild_errors.ErrInvalidInput
	}
	if in.Username == "" || in.DisplayName == "" {
		return guild_errors.ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return guild_errors.ErrInvalidInput
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func generateToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type contextKey string

const (
	userIDKey    contextKey = "auth_user_id"
	sessionIDKey contextKey = "auth_session_id"
)

func WithUserSessionContext(ctx context.Context, userID, sessionID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return ctx
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(userIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(sessionIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	sessionID, ok := value.(uuid.UUID)
	return sessionID, ok
}

func toNullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
