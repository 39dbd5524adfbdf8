package wizard

import (
	"fmt"
	"strings"

	v1 "kioskreg/pkg/api/registrations/v1"
	"kioskreg/pkg/phone"
	"kioskreg/pkg/rut"
)

// DraftIncompleteError - черновик не прошел проверку перед отправкой.
// Missing содержит JSON-имена отсутствующих или испорченных полей.
type DraftIncompleteError struct {
	Missing []string
}

func (e *DraftIncompleteError) Error() string {
	return fmt.Sprintf("registration draft is incomplete: %s", strings.Join(e.Missing, ", "))
}

// CheckDraft проверяет, что черновик можно отправлять.
// Кроме обязательных полей повторно проверяются RUT и телефон: черновик мог быть изменен в хранилище.
func CheckDraft(d *Draft) error {
	if d == nil {
		return &DraftIncompleteError{Missing: []string{
			"nombre", "rut", "telefono", "email", "nivel_ventas", "servicio_mentorias", "servicio_jugar_activacion",
		}}
	}

	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "nombre")
	}
	if !rut.Validate(d.RUT) {
		missing = append(missing, "rut")
	}
	if !phone.Validate(d.Phone) {
		missing = append(missing, "telefono")
	}
	if strings.TrimSpace(d.Email) == "" {
		missing = append(missing, "email")
	}
	if !v1.SalesTier(d.SalesTier).Valid() {
		missing = append(missing, "nivel_ventas")
	}
	if d.MentorshipInterest == "" {
		missing = append(missing, "servicio_mentorias")
	}
	if d.ActivationInterest == "" {
		missing = append(missing, "servicio_jugar_activacion")
	}

	if len(missing) > 0 {
		return &DraftIncompleteError{Missing: missing}
	}
	return nil
}
