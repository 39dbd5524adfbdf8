// Package entities defines the domain entities for the registrations service.
package entities

import (
	"time"

	v1 "kioskreg/pkg/api/registrations/v1"
)

// Registration представляет регистрацию посетителя киоска.
// ID и CreatedAt назначаются хранилищем при вставке и больше не меняются.
type Registration struct {
	ID                 string
	Name               string
	RUT                string
	CompanyRUT         *string
	Phone              string
	Email              string
	SalesTier          v1.SalesTier
	MentorshipInterest v1.Interest
	ActivationInterest v1.Interest
	MentorshipCategory *v1.Category
	CreatedAt          time.Time
}

// NewRegistration собирает еще не сохраненную регистрацию.
// Пустые необязательные поля сохраняются как NULL.
func NewRegistration(req v1.CreateRegistrationRequest) *Registration {
	reg := &Registration{
		Name:               req.Name,
		RUT:                req.RUT,
		Phone:              req.Phone,
		Email:              req.Email,
		SalesTier:          v1.SalesTier(req.SalesTier),
		MentorshipInterest: v1.Interest(req.MentorshipInterest),
		ActivationInterest: v1.Interest(req.ActivationInterest),
	}
	if req.CompanyRUT != "" {
		companyRUT := req.CompanyRUT
		reg.CompanyRUT = &companyRUT
	}
	if req.MentorshipCategory != "" {
		category := v1.Category(req.MentorshipCategory)
		reg.MentorshipCategory = &category
	}
	return reg
}

// Clone возвращает копию записи, не разделяющую необязательные поля с оригиналом.
func (r *Registration) Clone() *Registration {
	clone := *r
	if r.CompanyRUT != nil {
		companyRUT := *r.CompanyRUT
		clone.CompanyRUT = &companyRUT
	}
	if r.MentorshipCategory != nil {
		category := *r.MentorshipCategory
		clone.MentorshipCategory = &category
	}
	return &clone
}

// ToAPI преобразует сущность в представление API.
func (r *Registration) ToAPI() v1.Registration {
	return v1.Registration{
		ID:                 r.ID,
		Name:               r.Name,
		RUT:                r.RUT,
		CompanyRUT:         r.CompanyRUT,
		Phone:              r.Phone,
		Email:              r.Email,
		SalesTier:          r.SalesTier,
		MentorshipInterest: r.MentorshipInterest,
		ActivationInterest: r.ActivationInterest,
		MentorshipCategory: r.MentorshipCategory,
		CreatedAt:          r.CreatedAt,
	}
}

// Category возвращает выбранную тему или CategoryNone.
func (r *Registration) Category() v1.Category {
	if r.MentorshipCategory == nil {
		return v1.CategoryNone
	}
	return *r.MentorshipCategory
}
