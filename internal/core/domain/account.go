package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// Account - учетная запись для входа. Роль хранится отдельно, в профиле.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewAccount создает учетную запись. Хэширование пароля происходит здесь.
func NewAccount(email, password string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ValidateEmail принимает только голый адрес, без отображаемого имени.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewValidationError("invalid email %q", email)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return NewValidationError("password must be at least %d characters", minPasswordLength)
	}
	// bcrypt игнорирует все после 72 байт
	if len(password) > 72 {
		return NewValidationError("password must be at most 72 bytes")
	}
	return nil
}

// CheckPassword сравнивает пароль с сохраненным хэшем.
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// Claims - данные, зашитые в JWT токен.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// Caller - аутентифицированный пользователь текущего запроса.
type Caller struct {
	UserID uuid.UUID
	Email  string
}
