package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cmms-system/internal/dto"
	"cmms-system/internal/services"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/utils"
)

// maxImportSize - предел размера загружаемого xlsx.
const maxImportSize = 10 << 20

type InventoryController struct {
	inventoryService services.InventoryServiceInterface
	logger           *zap.Logger
}

func NewInventoryController(service services.InventoryServiceInterface, logger *zap.Logger) *InventoryController {
	return &InventoryController{inventoryService: service, logger: logger}
}

func (c *InventoryController) GetParts(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.inventoryService.GetParts(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список запчастей успешно получен", http.StatusOK, total)
}

func (c *InventoryController) GetLowStock(ctx echo.Context) error {
	res, err := c.inventoryService.GetLowStock(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Позиции ниже минимума успешно получены", http.StatusOK)
}

func (c *InventoryController) FindPart(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.inventoryService.FindPart(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Запчасть успешно найдена", http.StatusOK)
}

func (c *InventoryController) GetMovements(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.inventoryService.GetMovements(ctx.Request().Context(), id, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Движение запчасти успешно получено", http.StatusOK, total)
}

func (c *InventoryController) CreatePart(ctx echo.Context) error {
	var payload dto.CreatePartDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		c.logger.Warn("CreatePart: некорректные данные", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.inventoryService.CreatePart(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Запчасть успешно создана", http.StatusCreated)
}

func (c *InventoryController) UpdatePart(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdatePartDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.inventoryService.UpdatePart(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Запчасть успешно обновлена", http.StatusOK)
}

func (c *InventoryController) DeletePart(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.inventoryService.DeletePart(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Запчасть успешно удалена", http.StatusOK)
}

func (c *InventoryController) AdjustStock(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.AdjustStockDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.inventoryService.AdjustStock(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Остаток изменён", http.StatusOK)
}

func (c *InventoryController) ExportParts(ctx echo.Context) error {
	buf, err := c.inventoryService.ExportParts(ctx.Request().Context())
	if err != nil {
		c.logger.Error("ExportParts: ошибка формирования файла", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return sendWorkbook(ctx, "inventory", buf)
}

func (c *InventoryController) ImportParts(ctx echo.Context) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Файл не передан (поле file)"), c.logger)
	}
	if header.Size > maxImportSize {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Файл слишком большой"), c.logger)
	}
	file, err := header.Open()
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Не удалось прочитать файл", err, nil), c.logger)
	}
	defer file.Close()

	res, err := c.inventoryService.ImportParts(ctx.Request().Context(), file)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Импорт склада завершён", http.StatusOK)
}
