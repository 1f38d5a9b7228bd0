package handlers

import (
	"time"

	"cheflink/internal/apperror"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type RouterOptions struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
}

func init() {
	binding.EnableDecoderDisallowUnknownFields = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(apperror.FieldName)
	}
}

// NewRouter wires middleware and every route onto a fresh engine.
func NewRouter(orders *OrderHandler, system *SystemHandler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(RequestID())
	router.Use(RequestLogger(opts.Logger))
	router.Use(Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.NoRoute(noRoute)
	router.NoMethod(noMethod)

	system.Register(router)
	orders.Register(router.Group("/orders"))

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
