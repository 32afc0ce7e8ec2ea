package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/entities"
	"cmms-system/internal/repositories"
	"cmms-system/pkg/config"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/service"
	"cmms-system/pkg/types"
	"cmms-system/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	RefreshToken(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.AuthResponseDTO, error)
	Me(ctx context.Context) (*dto.UserPublicDTO, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserPublicDTO, error)
	GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserPublicDTO, uint64, error)
}

type AuthService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	jwtSvc    service.JWTService
	logger    *zap.Logger
	cfg       *config.AuthConfig
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtSvc service.JWTService,
	logger *zap.Logger,
	cfg *config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		jwtSvc:    jwtSvc,
		logger:    logger,
		cfg:       cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	email := strings.TrimSpace(payload.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		s.logger.Warn("Попытка входа в заблокированную учётную запись", zap.Uint64("userID", user.ID))
		return nil, err
	}
	if err := utils.ComparePasswords(user.PasswordHash, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	s.resetLoginAttempts(ctx, user.ID)

	s.logger.Info("Пользователь вошёл в систему", zap.Uint64("userID", user.ID), zap.String("role", user.Role))
	return s.issueTokens(user)
}

func (s *AuthService) RefreshToken(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtSvc.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *entities.User) (*dto.AuthResponseDTO, error) {
	access, refresh, err := s.jwtSvc.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("не удалось выпустить токены: %w", err)
	}
	return &dto.AuthResponseDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         userToPublicDTO(user),
	}, nil
}

func (s *AuthService) Me(ctx context.Context) (*dto.UserPublicDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := userToPublicDTO(user)
	return &res, nil
}

func (s *AuthService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserPublicDTO, error) {
	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}
	created, err := s.userRepo.CreateUser(ctx, &entities.User{
		Fio:          strings.TrimSpace(payload.Fio),
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		PasswordHash: hash,
		Role:         payload.Role,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Пользователь создан", zap.Uint64("userID", created.ID), zap.String("role", created.Role))
	res := userToPublicDTO(created)
	return &res, nil
}

func (s *AuthService) GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserPublicDTO, uint64, error) {
	users, total, err := s.userRepo.GetUsers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	res := make([]dto.UserPublicDTO, 0, len(users))
	for i := range users {
		res = append(res, userToPublicDTO(&users[i]))
	}
	return res, total, nil
}

func (s *AuthService) checkLockout(ctx context.Context, userID uint64) error {
	if s.cacheRepo == nil {
		return nil
	}
	lockoutKey := fmt.Sprintf("lockout:%d", userID)

	// Если ключ существует, аккаунт заблокирован
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID uint64) {
	if s.cacheRepo == nil {
		return
	}
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачную попытку входа", zap.Uint64("userID", userID), zap.Error(err))
		return
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf("lockout:%d", userID)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("Учётная запись заблокирована после неудачных попыток входа",
			zap.Uint64("userID", userID), zap.Duration("duration", s.cfg.LockoutDuration))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID uint64) {
	if s.cacheRepo == nil {
		return
	}
	_ = s.cacheRepo.Del(ctx, fmt.Sprintf("login_attempts:%d", userID), fmt.Sprintf("lockout:%d", userID))
}
