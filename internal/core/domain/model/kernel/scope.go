package kernel

import (
	"context"
	"fmt"
	"regexp"

	"coldchain/internal/pkg/errs"
)

// ErrScopeIsNotConstructed indicates that a Scope was not created via NewScope.
var ErrScopeIsNotConstructed = errs.NewValueIsRequiredError("Scope must be created via NewScope")

// schemaPattern constrains tenant schema names to safe Postgres identifiers,
// since the schema name is interpolated into SET search_path.
var schemaPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// Scope is the caller context every operation runs under: the tenant schema
// that isolates the organization's data, the sede (warehouse) the caller is
// working from, and whether the caller explicitly authorized moving units
// across sedes in this request.
//
// Scope is resolved once per request by the identity middleware and carried on
// the request context. Repositories never see it directly; the unit of work
// pins the transaction to the tenant schema, and command handlers consult the
// sede and the transfer flag through the cross-sede guard.
type Scope struct {
	tenantSchema      string
	sedeID            *UUID
	allowSedeTransfer bool

	guard ConstructorGuard
}

// NewScope builds a caller scope. tenantSchema is mandatory and must be a safe
// lowercase identifier; sedeID is optional (nil means the caller is not pinned
// to one warehouse).
func NewScope(tenantSchema string, sedeID *UUID, allowSedeTransfer bool) (Scope, error) {
	if tenantSchema == "" {
		return Scope{}, errs.NewValueIsRequiredError("tenantSchema")
	}
	if !schemaPattern.MatchString(tenantSchema) {
		return Scope{}, errs.NewValueIsInvalidErrorWithCause("tenantSchema",
			fmt.Errorf("%q is not a valid schema identifier", tenantSchema))
	}
	if sedeID != nil {
		if err := sedeID.Validate(); err != nil {
			return Scope{}, err
		}
	}
	return Scope{
		tenantSchema:      tenantSchema,
		sedeID:            sedeID,
		allowSedeTransfer: allowSedeTransfer,
		guard:             NewConstructorGuard(),
	}, nil
}

// Validate ensures the Scope was created through NewScope.
func (s Scope) Validate() error {
	return s.guard.Validate(ErrScopeIsNotConstructed)
}

// TenantSchema returns the tenant's schema name.
func (s Scope) TenantSchema() string {
	return s.tenantSchema
}

// SedeID returns the caller's warehouse, or nil when not pinned to one.
func (s Scope) SedeID() *UUID {
	return s.sedeID
}

// AllowSedeTransfer reports whether the caller explicitly authorized
// cross-sede movement for this request.
func (s Scope) AllowSedeTransfer() bool {
	return s.allowSedeTransfer
}

type scopeContextKey struct{}

// WithScope stores the caller scope on the context.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext extracts the caller scope placed by the identity middleware.
// Returns an error when the request carries no scope, which means the request
// never went through the middleware.
func ScopeFromContext(ctx context.Context) (Scope, error) {
	scope, ok := ctx.Value(scopeContextKey{}).(Scope)
	if !ok {
		return Scope{}, errs.NewValueIsRequiredError("scope is missing from context")
	}
	if err := scope.Validate(); err != nil {
		return Scope{}, err
	}
	return scope, nil
}
