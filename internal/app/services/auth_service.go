package services

import (
	"context"

	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/app/models/dto"
	"github.com/rollbook/rollbook/internal/app/repositories"
	"github.com/rollbook/rollbook/internal/pkg/apperrors"
	"github.com/rollbook/rollbook/internal/pkg/auth"
	"github.com/rollbook/rollbook/internal/pkg/logger"
)

// AuthService handles registration, login and token refresh
type AuthService struct {
	userRepo   *repositories.UserRepository
	tokenRepo  *repositories.TokenRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new auth service instance
func NewAuthService(userRepo *repositories.UserRepository, tokenRepo *repositories.TokenRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
	}
}

// Register creates a new user account. Self-registration only grants the
// student role; admin and faculty accounts must be created by an admin.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest, createdByAdmin bool) (*dto.AuthResponse, error) {
	role := req.RoleType
	if role == "" {
		role = models.RoleStudent
	}
	if !models.ValidRole(role) {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "roleType must be one of ADMIN, FACULTY, STUDENT")
	}
	if role != models.RoleStudent && !createdByAdmin {
		return nil, apperrors.NewForbiddenError("only admins can create faculty or admin accounts")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:         req.Email,
		Password:      hashed,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		RoleType:      role,
		StudentNumber: req.StudentNumber,
		IsActive:      true,
	}

	if _, err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Info().
		Int64("userId", user.ID).
		Str("role", string(user.RoleType)).
		Msg("User registered")

	return s.issueTokens(ctx, user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken exchanges a stored refresh token for a new token pair. The
// used token is revoked so each refresh token works exactly once.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokenRepo.GetValid(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, apperrors.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.ErrTokenInvalid
	}

	if err := s.tokenRepo.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes every active refresh token of the user.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	err = s.tokenRepo.Save(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: s.jwtService.GetRefreshTokenExpiry(),
	})
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           accessToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(expiresIn),
			RefreshToken:          refreshToken,
			RefreshTokenExpiresIn: int64(refreshExpiresIn),
		},
		User: dto.UserToResponse(user),
	}, nil
}
