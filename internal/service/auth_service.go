package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/internal/dto"
	"github.com/prperemyshlev/easyped-service/internal/repository"
	"github.com/prperemyshlev/easyped-service/internal/utils"
	"go.uber.org/zap"
)

var (
	errUserExists         = domain.Conflict("User already exists")
	errInvalidCredentials = domain.Unauthorized("Invalid credentials")
	errInvalidToken       = domain.Unauthorized("Token is not valid")
)

// authService implements AuthService interface
type authService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	hasher     *utils.PasswordHasher
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *utils.JWTManager,
	hasher *utils.PasswordHasher,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		hasher:     hasher,
		logger:     logger,
	}
}

// registration is a validated RegisterRequest
type registration struct {
	email        string
	password     string
	name         string
	role         domain.Role
	federatedID  string
	authProvider domain.AuthProvider
}

func parseRegistration(req *dto.RegisterRequest) (*registration, error) {
	r := &registration{
		email:        utils.SanitizeEmail(req.Email),
		password:     req.Password,
		name:         strings.TrimSpace(req.Name),
		role:         domain.Role(req.Role),
		federatedID:  strings.TrimSpace(req.FederatedID),
		authProvider: domain.AuthProvider(req.AuthProvider),
	}

	if !utils.ValidateEmail(r.email) {
		return nil, domain.Invalid("email", "invalid email format")
	}
	if r.name == "" {
		return nil, domain.Invalid("name", "is required")
	}
	if !r.role.Valid() {
		return nil, domain.Invalid("role", "must be doctor or parent")
	}
	if r.authProvider == "" {
		r.authProvider = domain.AuthProviderEmail
	}
	if !r.authProvider.Valid() {
		return nil, domain.Invalid("authProvider", "must be email, google or apple")
	}
	if r.password == "" && r.federatedID == "" {
		return nil, domain.Invalid("password", "a password or a federated id is required")
	}
	if r.password != "" && !utils.ValidatePassword(r.password) {
		return nil, domain.Invalid("password", fmt.Sprintf("must be at least %d characters long", utils.MinPasswordLength))
	}
	if len(r.password) > utils.MaxPasswordLength {
		return nil, domain.Invalid("password", fmt.Sprintf("must be at most %d bytes long", utils.MaxPasswordLength))
	}

	return r, nil
}

// Register registers a new user
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	reg, err := parseRegistration(req)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, reg); err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        reg.email,
		Name:         reg.name,
		Role:         reg.role,
		AuthProvider: reg.authProvider,
	}

	if reg.password != "" {
		passwordHash, err := s.hasher.Hash(reg.password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &passwordHash
	}
	if reg.federatedID != "" {
		user.FederatedID = &reg.federatedID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) || errors.Is(err, repository.ErrDuplicateFederatedID) {
			return nil, errUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("auth_provider", string(user.AuthProvider)),
	)

	return s.newAuthResponse("User created successfully", user)
}

// ensureUnique rejects a registration whose email or federated id is already taken
func (s *authService) ensureUnique(ctx context.Context, reg *registration) error {
	_, err := s.userRepo.GetByEmail(ctx, reg.email)
	if err == nil {
		return errUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check user existence: %w", err)
	}

	if reg.federatedID == "" {
		return nil
	}

	_, err = s.userRepo.GetByFederatedID(ctx, reg.federatedID)
	if err == nil {
		return errUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to check federated id: %w", err)
	}

	return nil
}

// Login authenticates a user by federated id, or by email and password
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	federatedID := strings.TrimSpace(req.FederatedID)

	var user *domain.User
	var err error
	if federatedID != "" {
		user, err = s.userRepo.GetByFederatedID(ctx, federatedID)
	} else {
		email := utils.SanitizeEmail(req.Email)
		if email == "" {
			return nil, errInvalidCredentials
		}
		user, err = s.userRepo.GetByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	switch {
	case req.Password != "" && user.HasPassword():
		if !s.hasher.Compare(req.Password, *user.PasswordHash) {
			return nil, errInvalidCredentials
		}
	case federatedID == "":
		return nil, errInvalidCredentials
	}

	return s.newAuthResponse("Login successful", user)
}

// GetUser gets the public projection of a user
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	info := dto.NewUserInfo(user)
	return &info, nil
}

// ValidateToken validates a bearer token without touching the database
func (s *authService) ValidateToken(_ context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}
