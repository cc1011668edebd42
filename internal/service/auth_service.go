package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"surveyflow/internal/config"
	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

// AuthService verifies identity tokens and resolves the caller's role
type AuthService struct {
	jwtSecret []byte
	issuer    string
	audience  string
	tokenTTL  time.Duration
	userRepo  repository.UserRepo
	logger    *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.AuthConfig, userRepo repository.UserRepo, logger *zap.Logger) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		jwtSecret: []byte(cfg.JWTSecret),
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
		tokenTTL:  ttl,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// ValidateToken verifies an HS256 token and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &model.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueToken mints a token the way the identity provider would.
// Only the seed tool and tests use it.
func (s *AuthService) IssueToken(userID, email string, role model.Role) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := time.Now()
	claims := &model.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ResolveUser turns verified claims into a principal. A role claim wins;
// otherwise the stored profile decides. First-time users get a profile
// with the default role.
func (s *AuthService) ResolveUser(ctx context.Context, claims *model.Claims) (*model.Principal, error) {
	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		user, err = s.userRepo.Ensure(ctx, claims.Subject, claims.Email)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.logger.Info("User profile created", zap.String("userId", claims.Subject))
	}

	p := &model.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if p.Email == "" {
		p.Email = user.Email
	}
	if !p.Role.Valid() {
		p.Role = user.Role
	}
	if !p.Role.Valid() {
		p.Role = model.RoleUser
	}
	return p, nil
}
