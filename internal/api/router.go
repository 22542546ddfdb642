package api

import (
	"fm3drun/internal/api/handler"
	"fm3drun/pkg/router"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "fm3drun/docs"
)

func RegisterRoutes(r *router.Router) {
	r.GET("/api/v1/runs", handler.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/chunks", handler.GetRunChunks)
	r.GET("/api/v1/runs/*/errors", handler.GetRunErrors)
	// Generic run route last
	r.GET("/api/v1/runs/*", handler.GetRun)
	r.GET("/api/v1/download/*/*", handler.DownloadOutput)
	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
