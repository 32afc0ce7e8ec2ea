package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = errors.New("неверный метод подписи токена")
	ErrInvalidToken         = errors.New("недопустимый токен")
	ErrTokenExpired         = errors.New("срок действия токена истёк")
	ErrTokenIsNotRefresh    = errors.New("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = errors.New("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = errors.New("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = errors.New("неверный формат заголовка авторизации")
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	ErrUnauthorized       = errors.New("неавторизован")
	ErrForbidden          = errors.New("доступ запрещён")
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrAccountLocked      = errors.New("учётная запись временно заблокирована")
	ErrUserInactive       = errors.New("учётная запись отключена")

	// Общие
	ErrNotFound   = errors.New("запись не найдена")
	ErrBadRequest = errors.New("неверный запрос")
	ErrConflict   = errors.New("конфликт данных")
	ErrDuplicate  = errors.New("повторный запрос, дождитесь обработки предыдущего")

	// Предметная область
	ErrAssetInUse           = errors.New("актив используется в заявках или планах обслуживания")
	ErrAssetCycle           = errors.New("родительский актив образует цикл в иерархии")
	ErrInvalidTransition    = errors.New("недопустимый переход статуса")
	ErrInsufficientStock    = errors.New("недостаточно запчастей на складе")
	ErrInvalidFrequency     = errors.New("недопустимая периодичность обслуживания")
	ErrPlanPaused           = errors.New("план обслуживания приостановлен")
	ErrNothingToRestock     = errors.New("нет позиций для пополнения")
	ErrAIUnavailable        = errors.New("сервис ИИ недоступен")
	ErrAIMalformedResponse  = errors.New("не удалось разобрать ответ сервиса ИИ")
	ErrPostalCodeNotFound   = errors.New("почтовый индекс не найден")
	ErrPostalLookupFailed   = errors.New("сервис поиска адреса недоступен")
	ErrInvalidImportFile    = errors.New("неверный формат файла импорта")
	ErrRequisitionImmutable = errors.New("заявку на закупку нельзя изменить в текущем статусе")
)

// HttpError несёт код ответа и сообщение для пользователя; Err уходит только в лог.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, ctx map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: ctx}
}

func NewBadRequestError(message string) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, Message: message}
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// statusBySentinel сопоставляет доменные ошибки с HTTP-кодами.
var statusBySentinel = []struct {
	err  error
	code int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrUserNotFound, http.StatusNotFound},
	{ErrPostalCodeNotFound, http.StatusNotFound},
	{ErrBadRequest, http.StatusBadRequest},
	{ErrInvalidFrequency, http.StatusBadRequest},
	{ErrAssetCycle, http.StatusBadRequest},
	{ErrInvalidImportFile, http.StatusBadRequest},
	{ErrNothingToRestock, http.StatusUnprocessableEntity},
	{ErrConflict, http.StatusConflict},
	{ErrAssetInUse, http.StatusConflict},
	{ErrInvalidTransition, http.StatusConflict},
	{ErrInsufficientStock, http.StatusConflict},
	{ErrPlanPaused, http.StatusConflict},
	{ErrRequisitionImmutable, http.StatusConflict},
	{ErrEmptyAuthHeader, http.StatusUnauthorized},
	{ErrInvalidAuthHeader, http.StatusUnauthorized},
	{ErrInvalidToken, http.StatusUnauthorized},
	{ErrTokenExpired, http.StatusUnauthorized},
	{ErrTokenIsNotRefresh, http.StatusUnauthorized},
	{ErrTokenIsNotAccess, http.StatusUnauthorized},
	{ErrInvalidSigningMethod, http.StatusUnauthorized},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrUserInactive, http.StatusForbidden},
	{ErrAccountLocked, http.StatusTooManyRequests},
	{ErrDuplicate, http.StatusTooManyRequests},
	{ErrAIUnavailable, http.StatusServiceUnavailable},
	{ErrAIMalformedResponse, http.StatusBadGateway},
	{ErrPostalLookupFailed, http.StatusBadGateway},
}

// StatusCode возвращает HTTP-код для ошибки или 0, если ошибка не доменная.
func StatusCode(err error) int {
	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return 0
}

// PublicMessage возвращает сообщение доменной ошибки, которое можно показать пользователю.
func PublicMessage(err error) string {
	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		return invalid.Message
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.err.Error()
		}
	}
	return "Внутренняя ошибка сервера"
}
