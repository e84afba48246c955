package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/salonware/loyalty/internal/apperrors"
	"github.com/salonware/loyalty/internal/models"
	"github.com/salonware/loyalty/internal/repository"
)

const (
	defaultSessionTTL = 12 * time.Hour
	signingMethod     = "HS256"

	// SessionCookieName holds the signed session token of a logged in admin
	SessionCookieName = "session"
)

// Interface to create or compare admin password hashes
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Secret key to sign session tokens, required
	SecretKey string

	// Session lifetime, default is used when zero
	SessionTTL time.Duration

	// Hasher for admin passwords, bcrypt when not set
	Hasher PasswordHasher
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AuthService issues and verifies admin sessions.
type AuthService struct {
	key        string
	sessionTTL time.Duration
	hasher     PasswordHasher
	adminRepo  repository.AdminRepo
}

func NewService(cfg Config, adminRepo repository.AdminRepo) (*AuthService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}
	if adminRepo == nil {
		return nil, errors.New("admin repo must not be nil")
	}

	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.Hasher == nil {
		cfg.Hasher = BcryptHasher{}
	}

	return &AuthService{
		key:        cfg.SecretKey,
		sessionTTL: cfg.SessionTTL,
		hasher:     cfg.Hasher,
		adminRepo:  adminRepo,
	}, nil
}

// CreateAdmin registers a new admin account with the given role.
func (s *AuthService) CreateAdmin(ctx context.Context, username string, password string, role string) (models.Admin, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.Admin{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	return s.adminRepo.CreateAdmin(ctx, repository.CreateAdminParams{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
}

// Login checks credentials and returns a signed session token.
// Unknown username and wrong password both map to ErrCredentialsInvalid.
func (s *AuthService) Login(ctx context.Context, username string, password string) (string, models.Admin, error) {
	admin, err := s.adminRepo.GetAdminByUsername(ctx, username)

	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrAdminNotFound):
		return "", models.Admin{}, apperrors.ErrCredentialsInvalid
	default:
		return "", models.Admin{}, err
	}

	if err := s.hasher.Compare(admin.PasswordHash, password); err != nil {
		return "", models.Admin{}, apperrors.ErrCredentialsInvalid
	}

	token, err := s.generateToken(admin)
	if err != nil {
		return "", models.Admin{}, fmt.Errorf("can't sign session token. Err: %w", err)
	}

	return token, admin, nil
}

// SetSessionCookie attaches the session token to the response.
func (s *AuthService) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// AdminFromRequest authenticates the request by its session cookie.
// The admin is always re-read from the repository so role changes take
// effect before the token expires.
func (s *AuthService) AdminFromRequest(ctx context.Context, r *http.Request) (models.Admin, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return models.Admin{}, apperrors.ErrSessionTokenNotFound
	}

	adminID, err := s.parseToken(cookie.Value)
	if err != nil {
		return models.Admin{}, err
	}

	admin, err := s.adminRepo.GetAdmin(ctx, adminID)

	switch {
	case err == nil:
		return admin, nil
	case errors.Is(err, apperrors.ErrAdminNotFound):
		return models.Admin{}, apperrors.ErrSessionTokenInvalid
	default:
		return models.Admin{}, err
	}
}

func (s *AuthService) generateToken(admin models.Admin) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
		Role: admin.Role,
	}

	token := jwt.NewWithClaims(jwt.GetSigningMethod(signingMethod), claims)
	return token.SignedString([]byte(s.key))
}

func (s *AuthService) parseToken(tokenString string) (uuid.UUID, error) {
	var claims sessionClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) { return []byte(s.key), nil },
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, apperrors.ErrSessionTokenInvalid
	}

	adminID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperrors.ErrSessionTokenInvalid
	}

	return adminID, nil
}
