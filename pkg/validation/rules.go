package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	postalCodeRe = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	skuRe        = regexp.MustCompile(`^[A-Z0-9][A-Z0-9._-]{1,39}$`)
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"frequency_unit":     oneOf("days", "months", "years"),
		"asset_status":       oneOf("operational", "maintenance", "stopped", "inactive"),
		"criticality":        oneOf("low", "medium", "high", "critical"),
		"ticket_priority":    oneOf("low", "medium", "high", "critical"),
		"ticket_type":        oneOf("corrective", "preventive", "predictive", "inspection"),
		"ticket_status":      oneOf("open", "in_progress", "waiting_parts", "resolved", "closed", "cancelled"),
		"requisition_status": oneOf("draft", "submitted", "approved", "ordered", "received", "cancelled"),
		"user_role":          oneOf("admin", "manager", "technician"),
		"postal_code":        isPostalCode,
		"sku":                isSKU,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func oneOf(allowed ...string) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}

// isPostalCode - CEP: 8 цифр, дефис после пятой допустим
func isPostalCode(fl validator.FieldLevel) bool {
	return postalCodeRe.MatchString(fl.Field().String())
}

func isSKU(fl validator.FieldLevel) bool {
	return skuRe.MatchString(fl.Field().String())
}
