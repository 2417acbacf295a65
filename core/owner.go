package core

import (
	"context"
	"strings"
)

// OwnerID identifies the principal every row is scoped to.
type OwnerID string

func (o OwnerID) String() string { return string(o) }

// Check returns ErrUnauthorized for a blank owner.
func (o OwnerID) Check() error {
	if strings.TrimSpace(string(o)) == "" {
		return ErrUnauthorized
	}
	return nil
}

type OwnerResolver interface {
	ResolveOwner(ctx context.Context) (OwnerID, error)
}

type ownerCtxKey struct{}

// WithOwner returns a copy of ctx carrying the authenticated owner.
func WithOwner(ctx context.Context, owner OwnerID) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, owner)
}

// ContextOwnerResolver resolves the owner set on the context by WithOwner.
// It does not memoize; each call reads the context again.
type ContextOwnerResolver struct{}

var _ OwnerResolver = ContextOwnerResolver{}

func (ContextOwnerResolver) ResolveOwner(ctx context.Context) (OwnerID, error) {
	owner, _ := ctx.Value(ownerCtxKey{}).(OwnerID)
	if err := owner.Check(); err != nil {
		return "", err
	}
	return owner, nil
}
