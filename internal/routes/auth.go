package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/services"
	"cmms-system/pkg/middleware"
	"cmms-system/pkg/service"
)

func runAuthRouter(
	api *echo.Group,
	secureGroup *echo.Group,
	authService services.AuthServiceInterface,
	jwtSvc service.JWTService,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	authCtrl := controllers.NewAuthController(authService, jwtSvc, logger)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.POST("/refresh_token", authCtrl.RefreshToken)
		authGroup.POST("/logout", authCtrl.Logout)
		authGroup.GET("/me", authCtrl.Me, authMW.Auth)
	}

	admin := authMW.RequireRole(middleware.RoleAdmin)
	{
		secureGroup.GET("/users", authCtrl.GetUsers, admin)
		secureGroup.POST("/users", authCtrl.CreateUser, admin)
	}
}
