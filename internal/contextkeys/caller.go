package contextkeys

import (
	"context"

	"marketplace-service/internal/core/domain"
)

type callerKeyType struct{}

var callerKey = callerKeyType{}

// ContextWithCaller сохраняет аутентифицированного пользователя запроса.
func ContextWithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext возвращает false для анонимного запроса.
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(domain.Caller)
	return caller, ok
}
