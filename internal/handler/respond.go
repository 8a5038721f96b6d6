package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/coworkhq/member-portal/internal/model"
	"github.com/coworkhq/member-portal/internal/notify"
	"github.com/coworkhq/member-portal/internal/queue"
)

// internalError logs the failure with request context and returns an opaque
// 500. Database and crypto errors never reach the client verbatim.
func internalError(c echo.Context, log *zap.Logger, msg string, err error) error {
	log.Error(msg,
		zap.Error(err),
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

// fieldErrors is the 400 body for validation failures: field -> message.
func fieldErrors(c echo.Context, errs map[string]string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
}

// publishAudit ships an audit event in the background. The request never
// waits on the broker and never sees its errors.
func publishAudit(sink AuditSink, kind string, u *model.User, detail string, meta notify.Meta) {
	if sink == nil {
		return
	}
	ev := queue.AuditEvent{
		Kind:       kind,
		Detail:     detail,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if u != nil {
		ev.UserID = u.ID
		ev.Username = u.Username
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = sink.Publish(ctx, ev)
	}()
}

// requestBaseURL reconstructs the externally visible origin for links placed
// in outbound mail, honoring the proxy protocol header.
func requestBaseURL(c echo.Context) string {
	scheme := "http"
	if c.Request().TLS != nil {
		scheme = "https"
	}
	if proto := c.Request().Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request().Host
}
