// Package auth decides which authenticated identities may run which catalogue operation.
package auth

import (
	"context"
	"slices"
	"strings"

	"github.com/tuanvumaihuynh/product-catalogue/internal/apperr"
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// rolePrefix is the authority prefix some identity providers put in front of role names.
const rolePrefix = "ROLE_"

// RoleFromClaim maps a raw claim value to a Role. Unknown values report false.
func RoleFromClaim(v string) (Role, bool) {
	v = strings.TrimPrefix(strings.TrimSpace(v), rolePrefix)
	switch Role(v) {
	case RoleAdmin, RoleUser:
		return Role(v), true
	default:
		return "", false
	}
}

type Operation uint8

const (
	// OperationOther covers any gated route without a dedicated entry.
	OperationOther Operation = iota
	OperationCreateProduct
	OperationUpdateProduct
	OperationDeleteProduct
	OperationListProductsByCategory
	OperationListPremiumProducts
)

func (o Operation) String() string {
	switch o {
	case OperationCreateProduct:
		return "create_product"
	case OperationUpdateProduct:
		return "update_product"
	case OperationDeleteProduct:
		return "delete_product"
	case OperationListProductsByCategory:
		return "list_products_by_category"
	case OperationListPremiumProducts:
		return "list_premium_products"
	default:
		return "other"
	}
}

// Permissions lists the roles allowed to run each operation.
var Permissions = map[Operation][]Role{
	OperationCreateProduct:          {RoleAdmin},
	OperationUpdateProduct:          {RoleAdmin},
	OperationDeleteProduct:          {RoleAdmin},
	OperationListProductsByCategory: {RoleAdmin, RoleUser},
	OperationListPremiumProducts:    {RoleAdmin, RoleUser},
	OperationOther:                  {RoleAdmin},
}

// Identity is a verified caller.
type Identity struct {
	Subject string
	Roles   []Role
}

func (i Identity) HasRole(role Role) bool {
	return slices.Contains(i.Roles, role)
}

// Authorize returns nil when identity may run op.
func Authorize(identity *Identity, op Operation) error {
	if identity == nil {
		return apperr.UnauthenticatedErr
	}

	allowed, ok := Permissions[op]
	if !ok {
		allowed = Permissions[OperationOther]
	}

	if slices.ContainsFunc(allowed, identity.HasRole) {
		return nil
	}

	return apperr.ForbiddenErr
}

type identityCtxKey struct{}

func NewContext(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// FromContext returns the identity stored by NewContext, or nil.
func FromContext(ctx context.Context) *Identity {
	identity, ok := ctx.Value(identityCtxKey{}).(Identity)
	if !ok {
		return nil
	}
	return &identity
}
