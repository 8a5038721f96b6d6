package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/coworkhq/member-portal/internal/authz"
	"github.com/coworkhq/member-portal/internal/config"
	"github.com/coworkhq/member-portal/internal/middleware"
	"github.com/coworkhq/member-portal/internal/session"
)

// HomeHandler serves the landing endpoint. It is where redirected browsers
// end up, so it is also the point where pending flash messages are delivered
// and cleared.
type HomeHandler struct {
	cfg      config.Config
	sessions session.Store
	log      *zap.Logger
}

func NewHomeHandler(cfg config.Config, sessions session.Store, log *zap.Logger) *HomeHandler {
	return &HomeHandler{cfg: cfg, sessions: sessions, log: log}
}

// Index returns the caller's identity, their one-shot flash messages and the
// portal's document links. Anonymous callers get the links only.
func (h *HomeHandler) Index(c echo.Context) error {
	out := echo.Map{
		"links": h.links(),
	}

	u := middleware.CurrentUser(c)
	if u != nil {
		out["user"] = u
		out["capabilities"] = authz.CapabilitiesFor(u.Role)
	}

	if sid := middleware.SessionID(c); sid != "" {
		flashes, err := h.sessions.PopFlashes(c.Request().Context(), sid)
		if err != nil {
			h.log.Warn("pop flashes", zap.Error(err))
		} else if len(flashes) > 0 {
			out["flashes"] = flashes
		}
	}

	return c.JSON(http.StatusOK, out)
}

func (h *HomeHandler) links() echo.Map {
	links := echo.Map{}
	if h.cfg.HasTermsOfServiceURL() {
		links["terms_of_service"] = h.cfg.TermsOfServiceURL
	}
	if h.cfg.HasPrivacyPolicyURL() {
		links["privacy_policy"] = h.cfg.PrivacyPolicyURL
	}
	return links
}
