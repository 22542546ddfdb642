package main

import (
	"flag"

	"fm3drun/internal/api"
	"fm3drun/internal/store"
	"fm3drun/pkg/router"
)

// @title fm3drun status API
// @version 1.0
// @description Read-only status API for parallel fm3d forward-modeling runs
// @host localhost:8080
// @BasePath /api/v1
func main() {
	dbPath := flag.String("db", "fm3drun.db", "run tracking database path")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	// Init DB
	if err := store.InitDB(*dbPath); err != nil {
		panic(err)
	}

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r)

	// Start server
	r.Start(*addr)
}
