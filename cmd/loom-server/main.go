package main

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"

	"github.com/loomrefactor/loom/internal/adapter/goparser"
	"github.com/loomrefactor/loom/internal/adapter/java"
	"github.com/loomrefactor/loom/internal/adapter/python"
	"github.com/loomrefactor/loom/internal/adapter/rust"
	"github.com/loomrefactor/loom/internal/adapter/typescript"
	"github.com/loomrefactor/loom/internal/apply"
	"github.com/loomrefactor/loom/internal/config"
	"github.com/loomrefactor/loom/internal/dispatch"
	"github.com/loomrefactor/loom/internal/logging"
	"github.com/loomrefactor/loom/internal/plugins"
	"github.com/loomrefactor/loom/internal/queue"
	"github.com/loomrefactor/loom/internal/registry"
	"github.com/loomrefactor/loom/internal/server"
)

func main() {
	cfg := server.LoadConfigFromEnv()

	logger, err := logging.New(false)
	if err != nil {
		log.Fatalf("loom-server init failed: %v", err)
	}

	reg := registry.New()
	reg.Register(goparser.New())
	reg.Register(typescript.New())
	reg.Register(python.New())
	reg.Register(rust.New())
	reg.Register(java.New())

	projectConfig, err := config.Load(filepath.Join(cfg.ProjectRoot, ".loom.yml"))
	if err != nil {
		log.Fatalf("loom-server init failed: loading .loom.yml: %v", err)
	}
	transforms, err := plugins.Load(projectConfig.Plugins)
	if err != nil {
		log.Fatalf("loom-server init failed: loading transform plugins: %v", err)
	}

	exec := apply.New(cfg.ProjectRoot, reg, logger)
	d := dispatch.New(cfg.ProjectRoot, reg, exec, queue.New()).WithTransforms(transforms)

	app, err := server.New(cfg, d)
	if err != nil {
		log.Fatalf("loom-server init failed: %v", err)
	}

	log.Printf("loom-server listening on %s (project_root=%s)", cfg.Addr, cfg.ProjectRoot)
	if err := app.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("loom-server exited with error: %v", err)
	}
}
