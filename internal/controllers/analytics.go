package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/services"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/utils"
)

// defaultReportDays - период отчёта, если date_from не передан.
const defaultReportDays = 30

type AnalyticsController struct {
	analyticsService services.AnalyticsServiceInterface
	logger           *zap.Logger
}

func NewAnalyticsController(service services.AnalyticsServiceInterface, logger *zap.Logger) *AnalyticsController {
	return &AnalyticsController{analyticsService: service, logger: logger}
}

func (c *AnalyticsController) GetDashboard(ctx echo.Context) error {
	res, err := c.analyticsService.GetDashboard(ctx.Request().Context())
	if err != nil {
		c.logger.Error("GetDashboard: ошибка при сборе дашборда", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Дашборд успешно получен", http.StatusOK)
}

func (c *AnalyticsController) GetInsights(ctx echo.Context) error {
	res, err := c.analyticsService.GetInsights(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Аналитика подготовлена", http.StatusOK)
}

// ExportTicketsReport: ?date_from=2024-01-01&date_to=2024-02-01, date_to не включается.
func (c *AnalyticsController) ExportTicketsReport(ctx echo.Context) error {
	from, to, err := parseReportPeriod(ctx, time.Now())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Debug("Запрос отчёта по заявкам", zap.Time("from", from), zap.Time("to", to))

	buf, err := c.analyticsService.ExportTicketsReport(ctx.Request().Context(), from, to)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return sendWorkbook(ctx, "tickets", buf)
}

func parseReportPeriod(ctx echo.Context, now time.Time) (time.Time, time.Time, error) {
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	if raw := ctx.QueryParam("date_to"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewBadRequestError("Неверный формат date_to")
		}
		to = t
	}
	from := to.AddDate(0, 0, -defaultReportDays)
	if raw := ctx.QueryParam("date_from"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewBadRequestError("Неверный формат date_from")
		}
		from = t
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, apperrors.NewBadRequestError("date_from должен быть раньше date_to")
	}
	return from, to, nil
}
