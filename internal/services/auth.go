package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"linkboard/internal/config"
	"linkboard/internal/models"
	"linkboard/internal/store"
	"linkboard/internal/utils"
)

// ErrInvalidCredential is returned for a forged, malformed or expired token.
var ErrInvalidCredential = errors.New("invalid credential")

// UserFinder is the part of the gateway the authenticator needs.
type UserFinder interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

// Claims is the payload of a session token.
type Claims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// AuthService issues session tokens and resolves the caller of a request.
type AuthService struct {
	secret  []byte
	ttl     time.Duration
	users   UserFinder
	callers *utils.TTLCache[uint, models.User]
	now     func() time.Time
}

func NewAuthService(cfg config.AuthConfig, users UserFinder) *AuthService {
	s := &AuthService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTL,
		users:  users,
		now:    time.Now,
	}
	if cfg.CallerCacheSize > 0 && cfg.CallerCacheTTL > 0 {
		// size is positive, so this cannot fail
		s.callers, _ = utils.NewTTLCache[uint, models.User](cfg.CallerCacheSize, cfg.CallerCacheTTL)
	}
	return s
}

// IssueToken signs a session token for userID.
func (s *AuthService) IssueToken(userID uint) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a session token and returns the user id it carries.
func (s *AuthService) ParseToken(tokenString string) (uint, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidCredential
	}
	return claims.UserID, nil
}

// Authenticate resolves the authorization header value of a request.
//
// An empty header is an anonymous caller: (nil, nil). Otherwise the header
// must read "<scheme> <token>"; the scheme is ignored. A token that does not
// verify yields ErrInvalidCredential. A valid token whose user no longer
// exists is anonymous as well.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*models.User, error) {
	if header == "" {
		return nil, nil
	}
	_, token, ok := strings.Cut(header, " ")
	if !ok || token == "" {
		return nil, fmt.Errorf("%w: expected \"<scheme> <token>\"", ErrInvalidCredential)
	}

	userID, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}

	return s.loadCaller(ctx, userID)
}

// loadCaller looks the user up, going through the caller cache when one is
// configured. Missing users are not cached.
func (s *AuthService) loadCaller(ctx context.Context, userID uint) (*models.User, error) {
	if s.callers != nil {
		if user, ok := s.callers.Get(userID); ok {
			return &user, nil
		}
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading caller %d: %w", userID, err)
	}

	if s.callers != nil {
		s.callers.Set(userID, *user)
	}
	return user, nil
}
