package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	ginvalidator "github.com/go-playground/validator/v10"

	"schoolscheduler/internal/metrics"
	"schoolscheduler/internal/middleware"
	apperrors "schoolscheduler/internal/pkg/errors"
	"schoolscheduler/internal/pkg/logger"
	customvalidator "schoolscheduler/internal/pkg/validator"
)

// Register wires the scheduling routes and their middleware chain onto
// router, following cmd/api/main.go's setupRouter shape (CORS ->
// RequestID -> Recovery -> Logging -> error Handler -> rate limit).
func Register(router *gin.Engine, log *logger.Logger, handlers *Handlers) {
	binding.Validator = ginBindingAdapter{customvalidator.Get()}

	router.Use(middleware.RequestIDDefault())
	router.Use(middleware.RecoveryDefault(log))
	router.Use(middleware.LoggingDefault(log))
	router.Use(apperrors.Handler(log))
	router.Use(middleware.RateLimitDefault())

	v1 := router.Group("/api/v1")
	{
		v1.POST("/schedules", handlers.Solve)
		v1.GET("/schedules/:id", handlers.Get)
	}

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// ginBindingAdapter lets gin's ShouldBindJSON run validation through the
// shared internal/pkg/validator engine (and its custom rules) instead of
// spinning up its own validator.Validate instance.
type ginBindingAdapter struct {
	validate *ginvalidator.Validate
}

func (a ginBindingAdapter) ValidateStruct(obj interface{}) error {
	return a.validate.Struct(obj)
}

func (a ginBindingAdapter) Engine() interface{} {
	return a.validate
}
