package service

import (
	"fmt"

	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/internal/dto"
)

// newAuthResponse issues a token for user and wraps it with the public user projection
func (s *authService) newAuthResponse(message string, user *domain.User) (*dto.AuthResponse, error) {
	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &dto.AuthResponse{
		Message: message,
		Token:   token,
		User:    dto.NewUserInfo(user),
	}, nil
}
