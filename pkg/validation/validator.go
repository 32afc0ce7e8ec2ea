package validation

import (
	"github.com/go-playground/validator/v10"

	"cmms-system/pkg/utils"
)

// New создает валидатор с null-типами и доменными правилами, готовый для echo.
func New() *utils.CustomValidator {
	v := validator.New()

	registerNullTypes(v)

	// сервер не должен стартовать без правил
	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}

	return utils.NewValidator(v)
}
