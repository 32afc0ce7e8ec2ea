package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"cmms-system/internal/services"
	apperrors "cmms-system/pkg/errors"
)

// bindAndValidate разбирает тело запроса и прогоняет его через валидатор echo.
func bindAndValidate(ctx echo.Context, payload interface{}) error {
	if err := ctx.Bind(payload); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат данных в теле запроса", err, nil)
	}
	return ctx.Validate(payload)
}

// sendWorkbook отдаёт xlsx как вложение; имя файла получает дату выгрузки.
func sendWorkbook(ctx echo.Context, name string, buf *bytes.Buffer) error {
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("20060102"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Blob(http.StatusOK, services.XLSXContentType, buf.Bytes())
}

// parseIDList читает список id через запятую: "1,2,3".
func parseIDList(raw string) ([]uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			return nil, apperrors.NewHttpError(http.StatusBadRequest, fmt.Sprintf("Неверный id в списке: %q", p), err, nil)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
