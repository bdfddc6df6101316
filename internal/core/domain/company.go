package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type RealEstateCompany struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	CompanyName       string
	ContactPersonName string
	PhoneNumber       *string
	Email             string
	CreatedAt         time.Time
}

// CompanyContactInput - изменяемые администратором контактные данные компании.
type CompanyContactInput struct {
	CompanyName       string
	ContactPersonName string
	PhoneNumber       *string
	Email             string
}

func (in CompanyContactInput) Validate() error {
	if strings.TrimSpace(in.CompanyName) == "" {
		return NewValidationError("company_name is required")
	}
	if strings.TrimSpace(in.ContactPersonName) == "" {
		return NewValidationError("contact_person_name is required")
	}
	return ValidateEmail(strings.ToLower(strings.TrimSpace(in.Email)))
}

// Apply переносит проверенный ввод в компанию.
func (c *RealEstateCompany) Apply(in CompanyContactInput) {
	c.CompanyName = strings.TrimSpace(in.CompanyName)
	c.ContactPersonName = strings.TrimSpace(in.ContactPersonName)
	c.PhoneNumber = nonEmpty(in.PhoneNumber)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

// CompanyRegistration - данные для создания компании администратором:
// учетная запись, профиль с ролью agent, агент и сама компания.
type CompanyRegistration struct {
	CompanyContactInput
	Password string
}

func (r CompanyRegistration) Validate() error {
	if err := r.CompanyContactInput.Validate(); err != nil {
		return err
	}
	return ValidatePassword(r.Password)
}

// CompanyOnboarding - все строки, которые создаются одной транзакцией.
type CompanyOnboarding struct {
	Account *Account
	Profile *UserProfile
	Agent   *Agent
	Company *RealEstateCompany
}

// NewCompanyOnboarding собирает связанные сущности для новой компании.
func NewCompanyOnboarding(reg CompanyRegistration) (*CompanyOnboarding, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	account, err := NewAccount(reg.Email, reg.Password)
	if err != nil {
		return nil, err
	}

	contactName := strings.TrimSpace(reg.ContactPersonName)
	profile := NewUserProfile(account, contactName)
	profile.Role = RoleAgent

	company := &RealEstateCompany{
		ID:        uuid.New(),
		UserID:    account.ID,
		CreatedAt: account.CreatedAt,
	}
	company.Apply(reg.CompanyContactInput)

	agent := NewAgentFromCompany(company)

	return &CompanyOnboarding{
		Account: account,
		Profile: profile,
		Agent:   agent,
		Company: company,
	}, nil
}
