package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleAgent, RoleAdmin:
		return r, nil
	default:
		return "", NewValidationError("unknown role %q", s)
	}
}

// Satisfies сообщает, достаточно ли роли для доступа к разделу с требуемой ролью.
// Администратору доступно все, агентский раздел открыт агентам и администраторам.
func (r Role) Satisfies(required Role) bool {
	switch required {
	case RoleAdmin:
		return r == RoleAdmin
	case RoleAgent:
		return r == RoleAgent || r == RoleAdmin
	default:
		return r == RoleUser || r == RoleAgent || r == RoleAdmin
	}
}

type UserProfile struct {
	ID        uuid.UUID
	Email     string
	FullName  *string
	AvatarURL *string
	Role      Role
	CreatedAt time.Time
}

// NewUserProfile создает профиль с ролью user для новой учетной записи.
func NewUserProfile(account *Account, fullName string) *UserProfile {
	return &UserProfile{
		ID:        account.ID,
		Email:     account.Email,
		FullName:  nonEmpty(&fullName),
		Role:      RoleUser,
		CreatedAt: account.CreatedAt,
	}
}
