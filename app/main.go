package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"cmms-system/internal/integrations"
	"cmms-system/internal/integrations/mock"
	"cmms-system/internal/integrations/viacep"
	"cmms-system/internal/routes"
	"cmms-system/pkg/ai"
	"cmms-system/pkg/config"
	"cmms-system/pkg/database/postgresql"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/eventbus"
	applogger "cmms-system/pkg/logger"
	"cmms-system/pkg/middleware"
	"cmms-system/pkg/service"
	"cmms-system/pkg/utils"
	"cmms-system/pkg/validation"
	appwebsocket "cmms-system/pkg/websocket"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.RequestLogger(logger.Named("http")))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))

	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if err := postgresql.Migrate(ctx, dbConn, logger.Named("migrations")); err != nil {
		logger.Fatal("не удалось применить миграции", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}
	defer redisClient.Close()

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger)

	aiClient, err := ai.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.RequestsPerMinute, cfg.AI.Timeout, logger)
	if err != nil {
		logger.Error("Gemini недоступен, ИИ-функции отключены", zap.Error(err))
		aiClient = ai.DisabledClient{}
	}

	postal := integrations.NewRegistry()
	if err := postal.Register(viacep.New(cfg.Postal.BaseURL, cfg.Postal.Timeout, logger)); err != nil {
		logger.Fatal("не удалось зарегистрировать провайдера адресов", zap.Error(err))
	}
	if err := postal.Register(mock.NewMockProvider()); err != nil {
		logger.Fatal("не удалось зарегистрировать провайдера адресов", zap.Error(err))
	}
	if err := postal.SetActive(cfg.Postal.Provider); err != nil {
		logger.Fatal("неизвестный провайдер адресов", zap.String("provider", cfg.Postal.Provider), zap.Error(err))
	}

	bus := eventbus.New(logger.Named("eventbus"))
	hub := appwebsocket.NewHub(logger.Named("ws"))
	go hub.Run()

	routes.InitRouter(e, routes.Dependencies{
		Context:   ctx,
		DB:        dbConn,
		Redis:     redisClient,
		JWT:       jwtSvc,
		Hub:       hub,
		Bus:       bus,
		AI:        aiClient,
		Postal:    postal,
		Validator: e.Validator.(*utils.CustomValidator),
		Config:    cfg,
		Logger:    logger,
	})

	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке HTTP-сервера", zap.Error(err))
	}
	bus.Wait()
	hub.Stop()
}
