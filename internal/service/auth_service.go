package service

import (
	"crypto/subtle"

	apperrors "supper-club/pkg/app_errors"
	"supper-club/pkg/auth"
)

const adminRole = "admin"

type AuthService interface {
	// Login 驗證管理員密碼，成功回傳 bearer token
	Login(password string) (string, error)
}

type AuthServiceImpl struct {
	adminPassword string
	jwtManager    *auth.JWTManager
}

func NewAuthService(adminPassword string, jwtManager *auth.JWTManager) AuthService {
	return &AuthServiceImpl{
		adminPassword: adminPassword,
		jwtManager:    jwtManager,
	}
}

func (s *AuthServiceImpl) Login(password string) (string, error) {
	// constant-time 比對，避免 timing attack
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) != 1 {
		return "", apperrors.ErrInvalidCredentials
	}
	return s.jwtManager.Generate(adminRole, adminRole)
}
