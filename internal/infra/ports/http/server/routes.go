package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ostanin/huddle/internal/application/config"
	"github.com/ostanin/huddle/internal/infra/ports/http/handlers"
	"github.com/ostanin/huddle/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	iceHandler *handlers.IceHandler,
	roomHandler *handlers.RoomHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	e.GET("/ws", wsHandler.Handle)

	v1 := e.Group("/api/v1")
	{
		v1.GET("/ice", iceHandler.IceServers)

		v1.GET("/rooms/:id/participants", roomHandler.Participants)
	}

	return e
}
