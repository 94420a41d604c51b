package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pdfbinder/backend/internal/api"
	"github.com/pdfbinder/backend/internal/codec"
	"github.com/pdfbinder/backend/internal/config"
	"github.com/pdfbinder/backend/internal/export"
	"github.com/pdfbinder/backend/internal/ingest"
	"github.com/pdfbinder/backend/internal/render"
	"github.com/pdfbinder/backend/internal/store"
	"github.com/pdfbinder/backend/internal/web"
	"github.com/pdfbinder/backend/internal/workspace"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "pdfbinder.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	sessionStore, err := openStore(cfg)
	if err != nil {
		fmt.Printf("Failed to open session store: %v\n", err)
		os.Exit(1)
	}
	defer sessionStore.Close()

	model := workspace.NewModel(sessionStore)
	defer model.Close()
	if err := model.Hydrate(); err != nil {
		// Degraded durability is survivable; an empty workspace is the
		// correct fallback for an unreadable snapshot.
		fmt.Printf("Warning: could not restore previous workspace: %v\n", err)
	}

	pdfCodec := codec.NewPDFCodec()
	pipeline := ingest.NewPipeline(pdfCodec, render.NewPageExtractRenderer(), cfg.Processing.MaxParallelIngest, cfg.Processing.PreviewScale)
	resolver := export.NewResolver(pdfCodec)

	h := api.NewHandler(&api.Dependencies{
		Workspace: model,
		Pipeline:  pipeline,
		Resolver:  resolver,
		Version:   Version,
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/api/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, h)

	staticDir := filepath.Join(exeDir, "dist")
	if web.HasStaticFiles(staticDir) {
		web.RegisterStaticRoutes(e, cfg.Web.BasePath, staticDir)
		fmt.Println("Serving frontend from", staticDir)
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	docs, pages := model.Counts()
	fmt.Printf("PDF Binder %s (built %s)\n", Version, BuildTime)
	fmt.Printf("  config:  %s\n", configPath)
	fmt.Printf("  data:    %s (%s store)\n", cfg.GetDataDir(), cfg.Storage.Backend)
	fmt.Printf("  restore: %d documents, %d pages\n", docs, pages)
	fmt.Printf("  listen:  http://%s\n", cfg.GetServerAddr())

	e.Logger.Fatal(e.StartServer(s))
}

// openStore selects the session store backend from config.
func openStore(cfg *config.AppConfig) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "duckdb":
		return store.NewDuckStore(cfg.GetDataDir())
	case "", "file":
		return store.NewFileStore(cfg.GetDataDir())
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
