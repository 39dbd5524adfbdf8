package wizard

import (
	"fmt"
	"sort"
	"strings"

	v1 "kioskreg/pkg/api/registrations/v1"
	"kioskreg/pkg/rut"
	"kioskreg/pkg/validation"
)

// FormMessages - сообщения под полями формы регистрации.
var FormMessages = validation.Messages{
	"nombre":       "El nombre debe tener al menos 2 caracteres",
	"rut":          "El RUT no es válido. Formato: 12345678-9",
	"rut_empresa":  "El RUT de empresa no es válido",
	"telefono":     "Teléfono inválido. Debe ser +569XXXXXXXX",
	"email":        "El email debe ser válido",
	"nivel_ventas": "Debes seleccionar un nivel de ventas",
}

// Form - поля экрана регистрации.
type Form struct {
	Name       string `json:"nombre" validate:"required,min=2"`
	RUT        string `json:"rut" validate:"required,rut"`
	CompanyRUT string `json:"rut_empresa" validate:"omitempty,rut"`
	// NoCompanyRUT - переключатель "No tengo": RUT компании не сохраняется.
	NoCompanyRUT bool   `json:"-" validate:"-"`
	Phone        string `json:"telefono" validate:"required,clphone"`
	Email        string `json:"email" validate:"required,email"`
	SalesTier    string `json:"nivel_ventas" validate:"required,salestier"`
}

// ValidationError - ошибки по полям формы. Ключ - JSON-имя поля.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid form fields: %s", strings.Join(names, ", "))
}

// Validate проверяет форму теми же правилами, что и сервер.
// Проверяются значения в том виде, в котором они попадут в черновик.
func (f Form) Validate() error {
	f = f.normalized()

	v, err := v1.DefaultValidator()
	if err != nil {
		return err
	}

	issues, err := v.Struct(&f, FormMessages)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return nil
	}

	fields := make(map[string]string, len(issues))
	for _, issue := range issues {
		fields[strings.Join(issue.Path, ".")] = issue.Message
	}
	return &ValidationError{Fields: fields}
}

// normalized убирает пробелы по краям и сбрасывает RUT компании при "No tengo".
func (f Form) normalized() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	if f.NoCompanyRUT {
		f.CompanyRUT = ""
	}
	return f
}

// apply записывает поля формы в черновик. RUT сохраняются отформатированными.
func (f Form) apply(d *Draft) {
	f = f.normalized()

	d.Name = f.Name
	d.RUT = rut.Format(f.RUT)
	d.CompanyRUT = ""
	if f.CompanyRUT != "" {
		d.CompanyRUT = rut.Format(f.CompanyRUT)
	}
	d.Phone = f.Phone
	d.Email = f.Email
	d.SalesTier = f.SalesTier
}
