package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Bitfisherllc/roofdb/internal/config"
	"github.com/Bitfisherllc/roofdb/internal/controllers"
	"github.com/Bitfisherllc/roofdb/internal/middleware"
)

func Register(r *gin.Engine, dir controllers.Directory, cfg *config.Config, log *zap.Logger) {
	rooferCtrl := &controllers.RooferController{Dir: dir, Log: log}

	r.Use(middleware.RequestID(), middleware.Logger(log))

	r.GET("/healthz", rooferCtrl.Health)

	// Public
	api := r.Group("/api")
	{
		api.GET("/roofers", rooferCtrl.List)
		api.GET("/roofers/listing-types", rooferCtrl.ListingTypes)
		api.GET("/roofers/:slug", rooferCtrl.Get)
	}

	// Admin
	admin := api.Group("/admin", middleware.AdminToken(cfg.AdminToken))
	{
		admin.GET("/roofers", rooferCtrl.AdminList)
		admin.POST("/roofers", rooferCtrl.AdminUpdate)
	}
}
