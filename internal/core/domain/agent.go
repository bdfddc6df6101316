package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Agent - личность, которой принадлежат объявления. Не более одного агента на пользователя.
type Agent struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CompanyName *string
	Bio         *string
	Phone       *string
	Website     *string
	LogoURL     *string
	CreatedAt   time.Time
}

// AgentProfileInput - поля профиля, которые агент редактирует сам.
type AgentProfileInput struct {
	CompanyName *string
	Bio         *string
	Phone       *string
	Website     *string
	LogoURL     *string
}

// NewAgentFromCompany собирает агента для автоматического создания по строке компании.
func NewAgentFromCompany(company *RealEstateCompany) *Agent {
	name := company.CompanyName
	return &Agent{
		ID:          uuid.New(),
		UserID:      company.UserID,
		CompanyName: &name,
		Phone:       nonEmpty(company.PhoneNumber),
		CreatedAt:   time.Now().UTC(),
	}
}

// ApplyProfile переносит ввод в агента; пустые строки превращаются в NULL.
func (a *Agent) ApplyProfile(in AgentProfileInput) {
	a.CompanyName = nonEmpty(in.CompanyName)
	a.Bio = nonEmpty(in.Bio)
	a.Phone = nonEmpty(in.Phone)
	a.Website = nonEmpty(in.Website)
	a.LogoURL = nonEmpty(in.LogoURL)
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
