package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coworkhq/member-portal/internal/authz"
	"github.com/coworkhq/member-portal/internal/session"
)

// RequireCapability gates a route on the capability table. A caller whose
// role lacks the capability is not given a 403; they are sent back to the
// home page with a transient flash message, the way the rest of the portal
// reports recoverable problems.
func RequireCapability(action authz.Action, store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			if !authz.Can(u.Role, action) {
				if sid := SessionID(c); sid != "" {
					_ = store.AddFlash(c.Request().Context(), sid, session.Flash{
						Level:   "error",
						Message: "You do not have permission to access this page",
					})
				}
				return c.Redirect(http.StatusSeeOther, "/")
			}
			return next(c)
		}
	}
}
