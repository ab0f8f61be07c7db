package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/report"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// quarter periods look like "Q1-2025"
	_ = v.RegisterValidation("quarter", func(fl validator.FieldLevel) bool {
		return report.ValidPeriod(fl.Field().String())
	})
	return v
}

// checkValid runs struct validation and, on failure, writes a list-shaped
// detail mirroring the shape clients already parse for field errors.
// Returns false when the request was rejected.
func checkValid(w http.ResponseWriter, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	detail := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		detail = append(detail, map[string]string{"msg": fieldMessage(fe)})
	}
	respondError(w, http.StatusBadRequest, detail)
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", fe.Field())
	case "email":
		return fmt.Sprintf("%s deve ser um email válido", fe.Field())
	case "min":
		return fmt.Sprintf("%s deve ter no mínimo %s caracteres", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", fe.Field(), fe.Param())
	case "quarter":
		return fmt.Sprintf("%s deve estar no formato Q1-2025", fe.Field())
	default:
		return fmt.Sprintf("%s inválido", fe.Field())
	}
}
