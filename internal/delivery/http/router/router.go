// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	custommiddleware "rentdesk/internal/delivery/http/middleware"
	"rentdesk/internal/delivery/http/router/handler"
	"rentdesk/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler    *handler.UserHandler
	SessionHandler *handler.SessionHandler
	RentalHandler  *handler.RentalHandler
	AuthMiddleware *custommiddleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler    *handler.UserHandler
	sessionHandler *handler.SessionHandler
	rentalHandler  *handler.RentalHandler
	authMiddleware *custommiddleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:    params.UserHandler,
		sessionHandler: params.SessionHandler,
		rentalHandler:  params.RentalHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.userHandler.Register)
		authGroup.POST("/login", r.userHandler.Login)
		authGroup.POST("/google/callback", r.userHandler.GoogleCallback)
		authGroup.POST("/refresh", r.sessionHandler.RefreshToken)
		authGroup.POST("/logout", r.sessionHandler.Logout)
	}

	// Session routes that require authentication
	sessionGroup := e.Group("/auth")
	sessionGroup.Use(r.authMiddleware.Authenticate)
	{
		sessionGroup.POST("/logout-all", r.sessionHandler.LogoutAll)
		sessionGroup.GET("/sessions", r.sessionHandler.GetSessions)
		sessionGroup.DELETE("/sessions/:id", r.sessionHandler.RevokeSession)
	}

	// User routes that require authentication
	userGroup := e.Group("/user")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("/profile", r.userHandler.GetProfile)
	}

	// Rental management routes: reads for any signed-in user, mutations
	// restricted to admins.
	requireAdmin := r.authMiddleware.RequireRole(entity.RoleAdmin.String())

	productGroup := e.Group("/products")
	productGroup.Use(r.authMiddleware.Authenticate)
	{
		productGroup.GET("", r.rentalHandler.ListRentals)
		productGroup.POST("", r.rentalHandler.CreateRental, requireAdmin)
		productGroup.POST("/:id", r.rentalHandler.AdvancePayment, requireAdmin)
	}

	renterGroup := e.Group("/renters")
	renterGroup.Use(r.authMiddleware.Authenticate)
	{
		renterGroup.GET("", r.rentalHandler.ListRenters)
	}
}
