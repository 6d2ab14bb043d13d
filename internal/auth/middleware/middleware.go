package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mind-engage/bizassess/internal/apperr"
	"github.com/mind-engage/bizassess/internal/rbac"
)

const issuer = "bizassess"

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

type AuthService struct {
	hmac       []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &AuthService{hmac: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

type Claims struct {
	Sub   string    `json:"sub"`
	Email string    `json:"email"`
	Role  string    `json:"role"` // "user" or "admin"
	Type  TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is what login, register and refresh hand back to clients.
type Pair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds until Token expires
}

// Identity is the subject a token pair is issued for.
type Identity struct {
	ID    string
	Email string
	Role  string
}

func (a *AuthService) IssuePair(id Identity) (Pair, error) {
	access, err := a.issue(id, TokenAccess, a.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := a.issue(id, TokenRefresh, a.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Token: access, RefreshToken: refresh, ExpiresIn: int64(a.accessTTL / time.Second)}, nil
}

func (a *AuthService) issue(id Identity, typ TokenType, ttl time.Duration) (string, error) {
	now := a.now()
	claims := &Claims{
		Sub:   id.ID,
		Email: id.Email,
		Role:  id.Role,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(a.hmac)
	if err != nil {
		return "", fmt.Errorf("auth: sign %s token: %w", typ, err)
	}
	return s, nil
}

// Parse verifies signature, expiry and token type.
func (a *AuthService) Parse(tokenStr string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthorized("token expired")
		}
		return nil, apperr.Unauthorized("invalid token")
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Sub == "" {
		return nil, apperr.Unauthorized("invalid token")
	}
	if c.Type != want {
		return nil, apperr.Unauthorized("wrong token type")
	}
	return c, nil
}

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

func (f ErrorWriter) orPlain() ErrorWriter {
	if f != nil {
		return f
	}
	return func(w http.ResponseWriter, _ *http.Request, err error) {
		status := http.StatusUnauthorized
		if apperr.Is(err, apperr.CodeForbidden) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
	}
}

func JWTMiddleware(a *AuthService, fail ErrorWriter) func(http.Handler) http.Handler {
	fail = fail.orPlain()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				fail(w, r, apperr.Unauthorized("access token required"))
				return
			}
			c, err := a.Parse(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), TokenAccess)
			if err != nil {
				fail(w, r, err)
				return
			}
			ctx := WithSubject(r.Context(), c.Sub)
			ctx = WithEmail(ctx, c.Email)
			ctx = rbac.WithRole(ctx, c.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
