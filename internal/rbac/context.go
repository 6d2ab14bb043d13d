package rbac

import "context"

type ctxKey struct{}

// WithRole stores the caller's effective role.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ctxKey{}).(string)
	return role
}
