// Package router wires the portal's routes to their handlers and guards.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/coworkhq/member-portal/internal/authz"
	"github.com/coworkhq/member-portal/internal/config"
	"github.com/coworkhq/member-portal/internal/handler"
	"github.com/coworkhq/member-portal/internal/middleware"
	"github.com/coworkhq/member-portal/internal/session"
)

// Handlers bundles the endpoint handlers the router mounts.
type Handlers struct {
	Home         *handler.HomeHandler
	Auth         *handler.AuthHandler
	Equipment    *handler.EquipmentHandler
	Reservations *handler.ReservationHandler
	Users        *handler.UserHandler
}

// Register mounts every route. Identity runs on everything so the landing
// page can greet logged-in members; the credential endpoints additionally go
// through the rate limiter.
func Register(e *echo.Echo, cfg config.Config, rateCfg config.RateLimitConfig, rdb *redis.Client,
	sessions session.Store, users middleware.UserLoader, h Handlers) {

	e.Use(middleware.Identity(sessions, users, cfg.JWTSecret))

	limited := middleware.RateLimit(rateCfg, rdb)

	e.GET("/healthz", handler.Health)
	e.GET("/", h.Home.Index)

	e.POST("/register", h.Auth.Register, limited)
	e.POST("/login", h.Auth.Login, limited)
	e.POST("/logout", h.Auth.Logout, middleware.RequireAuth())
	e.POST("/forgot-password", h.Auth.ForgotPassword, limited)
	e.GET("/reset-password", h.Auth.CheckResetToken, limited)
	e.POST("/reset-password", h.Auth.ResetPassword, limited)

	// Inventory. Every member can browse; changing it takes the equipment
	// management capability.
	e.GET("/equipment", h.Equipment.List, middleware.RequireAuth())
	e.GET("/equipment/:id", h.Equipment.Get, middleware.RequireAuth())

	manage := middleware.RequireCapability(authz.ManageEquipment, sessions)
	e.POST("/equipment", h.Equipment.Create, manage)
	e.PUT("/equipment/:id", h.Equipment.Update, manage)
	e.DELETE("/equipment/:id", h.Equipment.Delete, manage)

	// Reservations belong to customers; the staff overview rides on the
	// equipment management capability.
	reserve := middleware.RequireCapability(authz.ReserveEquipment, sessions)
	e.GET("/reservations", h.Reservations.Index, reserve)
	e.POST("/reservations", h.Reservations.Create, reserve)
	e.POST("/reservations/:id/cancel", h.Reservations.Cancel, reserve)
	e.GET("/reservations/active", h.Reservations.Active, manage)

	e.GET("/users", h.Users.List, middleware.RequireCapability(authz.ManageUsers, sessions))
	e.POST("/users/staff", h.Users.CreateStaff, middleware.RequireCapability(authz.CreateStaff, sessions))
}
