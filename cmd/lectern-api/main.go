package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/lectern-dev/lectern/internal/router"
	"github.com/lectern-dev/lectern/internal/setup"
	"github.com/lectern-dev/lectern/shared/config"
	"github.com/lectern-dev/lectern/shared/logger"
)

func main() {
	log.SetFlags(log.Lshortfile)

	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()
	cfg := config.MustLoad(configFolder)

	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogFormat == "json")

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if deps.Cleanup != nil {
		defer deps.Cleanup()
	}

	r := router.SetupRouter(deps)

	httpPort := os.Getenv("PORT")
	if httpPort == "" && cfg.Public.Port != 0 {
		httpPort = strconv.Itoa(cfg.Public.Port)
	}
	if httpPort == "" {
		httpPort = "8080"
	}

	logger.Log.Info("Server started", "port", httpPort, "sandbox_school", deps.SandboxSchoolId)
	log.Fatal(http.ListenAndServe(":"+httpPort, r))
}
