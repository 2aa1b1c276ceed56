package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"coldchain/internal/core/domain/model/kernel"
)

// Identity headers resolved into the caller scope. Authentication itself
// happens upstream; by the time a request reaches this service the gateway
// has already verified who the caller is.
const (
	HeaderTenantSchema      = "X-Tenant-Schema"
	HeaderSedeID            = "X-Sede-ID"
	HeaderAllowSedeTransfer = "X-Allow-Sede-Transfer"
)

// TenantScope builds the kernel.Scope from the identity headers and stores it
// on the request context. Every tenant-scoped route runs behind it; a request
// without a valid tenant schema never reaches a handler.
func TenantScope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			var sedeID *kernel.UUID
			if raw := req.Header.Get(HeaderSedeID); raw != "" {
				id, err := kernel.UUIDFromString(raw)
				if err != nil {
					return c.JSON(http.StatusBadRequest, Problem{
						Code:    "INVALID_IDENTITY",
						Message: "invalid " + HeaderSedeID + " header",
					})
				}
				sedeID = &id
			}

			allowTransfer := req.Header.Get(HeaderAllowSedeTransfer) == "true"

			scope, err := kernel.NewScope(req.Header.Get(HeaderTenantSchema), sedeID, allowTransfer)
			if err != nil {
				return c.JSON(http.StatusBadRequest, Problem{
					Code:    "INVALID_IDENTITY",
					Message: "missing or invalid " + HeaderTenantSchema + " header",
				})
			}

			ctx := kernel.WithScope(req.Context(), scope)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// allowTransfer re-issues the request scope with the cross-sede flag set.
// Lets clients authorize a transfer through the request body instead of
// repeating the call with the header.
func allowTransfer(c echo.Context) error {
	ctx := c.Request().Context()
	scope, err := kernel.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	if scope.AllowSedeTransfer() {
		return nil
	}

	authorized, err := kernel.NewScope(scope.TenantSchema(), scope.SedeID(), true)
	if err != nil {
		return err
	}
	c.SetRequest(c.Request().WithContext(kernel.WithScope(ctx, authorized)))
	return nil
}
