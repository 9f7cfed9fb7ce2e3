package auth

import (
	"context"

	"github.com/engenharia-apr/aprd/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Token is the authenticated actor identity attached to every mutating
// call. Credential validation happens upstream of this core; the token
// is trusted input here.
type Token struct {
	Sub      string
	Email    string
	Name     string
	Role     types.Role
	TenantID string
}

// NewToken creates a token for an authenticated actor
func NewToken(sub, email, name string, role types.Role, tenantID string) *Token {
	return &Token{
		Sub:      sub,
		Email:    email,
		Name:     name,
		Role:     role,
		TenantID: tenantID,
	}
}

// NewAnonymousUser returns the no-auth development identity
func NewAnonymousUser(tenantID string) *Token {
	return &Token{
		Sub:      "anonymous",
		Name:     "Anonymous",
		Role:     types.RoleAdmin,
		TenantID: tenantID,
	}
}

type ctxTokenKey struct{}

// ContextWithToken attaches the actor token to the context
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext retrieves the actor token from the context
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	if !ok || token == nil {
		return nil, goerr.New("no actor token in context")
	}
	return token, nil
}
