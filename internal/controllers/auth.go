package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/services"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/service"
	"cmms-system/pkg/utils"
)

const refreshCookieName = "refreshToken"

type AuthController struct {
	authService services.AuthServiceInterface
	jwtSvc      service.JWTService
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, jwtSvc service.JWTService, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		jwtSvc:      jwtSvc,
		logger:      logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Error("Login: ошибка привязки данных", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверный формат данных для входа"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Warn("Login: ошибка авторизации", zap.String("email", payload.Email), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	ctrl.setRefreshCookie(c, res.RefreshToken)
	return utils.SuccessResponse(c, res, "Авторизация прошла успешно", http.StatusOK)
}

// RefreshToken берёт токен из тела запроса, а при его отсутствии из cookie.
func (ctrl *AuthController) RefreshToken(c echo.Context) error {
	var payload dto.RefreshTokenDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверный формат данных"))
	}
	if payload.RefreshToken == "" {
		cookie, err := c.Cookie(refreshCookieName)
		if err != nil || cookie.Value == "" {
			return ctrl.errorResponse(c, apperrors.ErrUnauthorized)
		}
		payload.RefreshToken = cookie.Value
	}

	res, err := ctrl.authService.RefreshToken(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}

	ctrl.setRefreshCookie(c, res.RefreshToken)
	return utils.SuccessResponse(c, res, "Токены успешно обновлены", http.StatusOK)
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	return utils.SuccessResponse(c, nil, "Вы успешно вышли из системы.", http.StatusOK)
}

func (ctrl *AuthController) Me(c echo.Context) error {
	res, err := ctrl.authService.Me(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Профиль пользователя успешно получен", http.StatusOK)
}

func (ctrl *AuthController) CreateUser(c echo.Context) error {
	var payload dto.CreateUserDTO
	if err := bindAndValidate(c, &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.CreateUser(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Пользователь успешно создан", http.StatusCreated)
}

func (ctrl *AuthController) GetUsers(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())

	res, total, err := ctrl.authService.GetUsers(c.Request().Context(), filter)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Список пользователей успешно получен", http.StatusOK, total)
}

func (ctrl *AuthController) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ctrl.jwtSvc.GetRefreshTokenTTL()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
