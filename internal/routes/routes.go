package routes

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/controllers"
	"cmms-system/internal/integrations"
	"cmms-system/internal/listeners"
	"cmms-system/internal/repositories"
	"cmms-system/internal/services"
	"cmms-system/pkg/ai"
	"cmms-system/pkg/config"
	"cmms-system/pkg/eventbus"
	"cmms-system/pkg/middleware"
	"cmms-system/pkg/service"
	"cmms-system/pkg/utils"
	appwebsocket "cmms-system/pkg/websocket"
)

// повторное создание заявки или выполнение плана тем же пользователем отклоняется в этом окне
const duplicateWindow = 5 * time.Second

// Dependencies - инфраструктура, созданная в main. Context ограничивает фоновые задачи роутера.
type Dependencies struct {
	Context   context.Context
	DB        *pgxpool.Pool
	Redis     *redis.Client
	JWT       service.JWTService
	Hub       *appwebsocket.Hub
	Bus       *eventbus.Bus
	AI        ai.Client
	Postal    integrations.RegistryInterface
	Validator *utils.CustomValidator
	Config    *config.Config
	Logger    *zap.Logger
}

// Services - сервисный слой, на который опираются маршруты.
type Services struct {
	Assets      services.AssetServiceInterface
	Technicians services.TechnicianServiceInterface
	Tickets     services.TicketServiceInterface
	Preventive  services.PreventiveServiceInterface
	Inventory   services.InventoryServiceInterface
	Purchasing  services.PurchasingServiceInterface
	Analytics   services.AnalyticsServiceInterface
	Twin        services.TwinServiceInterface
	Settings    services.SettingsServiceInterface
	Auth        services.AuthServiceInterface
}

func InitRouter(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger
	logger.Info("InitRouter: Начало создания маршрутов")

	svc := buildServices(deps)

	liveUpdates := listeners.NewLiveUpdateListener(svc.Twin, svc.Analytics, deps.Hub, logger.Named("live"))
	liveUpdates.Register(deps.Bus)

	authMW := middleware.NewAuthMiddleware(deps.JWT, logger.Named("auth"))
	wsCtrl := controllers.NewWebSocketController(deps.Hub, deps.JWT, logger.Named("ws"))
	dedup := controllers.NewRequestDeduplicator(logger.Named("dedup"))
	go dedup.Cleanup(deps.Context, time.Minute)

	mountRoutes(e.Group("/api"), authMW, dedup, svc, deps.JWT, wsCtrl, logger)

	logger.Info("InitRouter: Создание маршрутов завершено")
}

func buildServices(deps Dependencies) *Services {
	db := deps.DB
	logger := deps.Logger

	txManager := repositories.NewTxManager(db)
	cacheRepo := repositories.NewRedisCacheRepository(deps.Redis)

	assetRepo := repositories.NewAssetRepository(db, logger.Named("assets"))
	technicianRepo := repositories.NewTechnicianRepository(db, logger.Named("technicians"))
	ticketRepo := repositories.NewTicketRepository(db, logger.Named("tickets"))
	planRepo := repositories.NewPreventivePlanRepository(db, logger.Named("preventive"))
	partRepo := repositories.NewSparePartRepository(db, logger.Named("inventory"))
	reqRepo := repositories.NewRequisitionRepository(db, logger.Named("purchasing"))
	dashboardRepo := repositories.NewDashboardRepository(db, logger.Named("analytics"))
	settingsRepo := repositories.NewSettingsRepository(db, logger.Named("settings"))
	userRepo := repositories.NewUserRepository(db, logger.Named("auth"))

	settingsService := services.NewSettingsService(
		settingsRepo, deps.Postal, cacheRepo, deps.AI.Enabled(), deps.Config.Postal.CacheTTL, logger.Named("settings"),
	)
	// флаг ai_enabled из настроек выключает AI без перезапуска
	aiClient := ai.NewToggle(deps.AI, settingsService.AIEnabled)

	return &Services{
		Assets:      services.NewAssetService(assetRepo, ticketRepo, deps.Bus, logger.Named("assets")),
		Technicians: services.NewTechnicianService(technicianRepo, logger.Named("technicians")),
		Tickets: services.NewTicketService(
			txManager, ticketRepo, assetRepo, technicianRepo, planRepo, partRepo, aiClient, deps.Bus, logger.Named("tickets"),
		),
		Preventive: services.NewPreventiveService(
			txManager, planRepo, assetRepo, ticketRepo, technicianRepo, settingsRepo, deps.Validator, aiClient, deps.Bus, logger.Named("preventive"),
		),
		Inventory:  services.NewInventoryService(txManager, partRepo, deps.Validator, deps.Bus, logger.Named("inventory")),
		Purchasing: services.NewPurchasingService(txManager, partRepo, reqRepo, deps.Bus, logger.Named("purchasing")),
		Analytics: services.NewAnalyticsService(
			dashboardRepo, planRepo, technicianRepo, ticketRepo, cacheRepo, aiClient, deps.Config.Analytics.CacheTTL, logger.Named("analytics"),
		),
		Twin:     services.NewTwinService(assetRepo, dashboardRepo, planRepo, logger.Named("twin")),
		Settings: settingsService,
		Auth:     services.NewAuthService(userRepo, cacheRepo, deps.JWT, logger.Named("auth"), &deps.Config.Auth),
	}
}

func mountRoutes(
	api *echo.Group,
	authMW *middleware.AuthMiddleware,
	dedup *controllers.RequestDeduplicator,
	svc *Services,
	jwtSvc service.JWTService,
	wsCtrl *controllers.WebSocketController,
	logger *zap.Logger,
) {
	// WebSocket проверяет ?token= сам, до апгрейда соединения
	api.GET("/ws/twin", wsCtrl.ServeWs)

	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, svc.Auth, jwtSvc, logger.Named("auth"), authMW)
	runAssetRouter(secureGroup, svc.Assets, logger.Named("assets"), authMW)
	runTechnicianRouter(secureGroup, svc.Technicians, logger.Named("technicians"), authMW)
	once := dedup.Middleware(duplicateWindow)
	runTicketRouter(secureGroup, svc.Tickets, logger.Named("tickets"), authMW, once)
	runPreventiveRouter(secureGroup, svc.Preventive, logger.Named("preventive"), authMW, once)
	runInventoryRouter(secureGroup, svc.Inventory, logger.Named("inventory"), authMW)
	runPurchasingRouter(secureGroup, svc.Purchasing, logger.Named("purchasing"), authMW)
	runAnalyticsRouter(secureGroup, svc.Analytics, logger.Named("analytics"), authMW)
	runTwinRouter(secureGroup, svc.Twin, logger.Named("twin"))
	runSettingsRouter(secureGroup, svc.Settings, logger.Named("settings"), authMW)
}
