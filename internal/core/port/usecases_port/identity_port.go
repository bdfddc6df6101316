package usecases_port

import (
	"context"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
)

type ResolveIdentityUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) (domain.Identity, error)
}
