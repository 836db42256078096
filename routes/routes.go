package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Muga-ai/findahome/handlers"
	"github.com/Muga-ai/findahome/middleware"
)

func RegisterRoutes(e *echo.Echo, uc *handlers.UserController, lc *handlers.ListingController) {
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api")

	api.POST("/auth/register", uc.Register)
	api.POST("/auth/login", uc.Login)

	api.GET("/listings", lc.ListListings)
	api.GET("/listings/:id", lc.GetListing)

	protected := api.Group("")
	protected.Use(middleware.JWTMiddleware())

	protected.GET("/auth/me", uc.GetProfile)
	protected.GET("/my/listings", lc.MyListings)
	protected.POST("/listings", lc.CreateListing)
	protected.PUT("/listings/:id", lc.UpdateListing)
	protected.DELETE("/listings/:id", lc.DeleteListing)
}
