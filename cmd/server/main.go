package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/cobol-converter/backend/internal/api"
	"github.com/cobol-converter/backend/internal/config"
	"github.com/cobol-converter/backend/internal/convert"
	"github.com/cobol-converter/backend/internal/jobs"
	"github.com/cobol-converter/backend/internal/records"
	"github.com/cobol-converter/backend/internal/storage"
	"github.com/cobol-converter/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to converter.config.xml (default: next to the executable)")
	flag.Parse()

	if *configPath == "" {
		// Get the executable's directory for config resolution
		exePath, err := os.Executable()
		if err != nil {
			log.Fatalf("Failed to get executable path: %v", err)
		}
		*configPath = filepath.Join(filepath.Dir(exePath), "converter.config.xml")
	}

	// Load XML configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetLevel(logLevel(cfg.Advanced.LogLevel))

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	// Initialize storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir(), cfg.MaxUploadBytes())
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	recordStore, err := records.NewDuckStore(cfg.Storage.RecordsDatabase, records.Options{
		Threads:     cfg.Advanced.DuckDBThreads,
		MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
	})
	if err != nil {
		log.Fatalf("Failed to open conversion records: %v", err)
	}
	defer recordStore.Close()

	// Conversion rules and optional language model
	rules, err := convert.LoadRules(cfg.Processing.RulesFile)
	if err != nil {
		log.Fatalf("Failed to load conversion rules: %v", err)
	}
	rulesSource := "builtin"
	if cfg.Processing.RulesFile != "" {
		rulesSource = cfg.Processing.RulesFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := convert.NewGenerator(ctx, convert.GeneratorConfig{
		Provider:    cfg.AI.Provider,
		Model:       cfg.AI.Model,
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
	})
	if err != nil {
		log.Warnf("Language model unavailable, using rule-based conversion only: %v", err)
		generator = nil
	}
	aiModel := ""
	if generator != nil {
		aiModel = generator.Name()
	}
	converter := convert.NewConverter(rules, generator)

	// Initialize conversion job manager
	jobMgr := jobs.NewManager(fileStore, recordStore, converter,
		cfg.Processing.MaxConcurrentConversions, cfg.ConversionTimeout())

	// Start background job cleanup
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := jobMgr.Cleanup(cfg.JobRetention()); n > 0 {
					log.Debugf("[Jobs] Removed %d finished jobs", n)
				}
			}
		}
	}()

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("Failed to load page templates: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.Advanced.LogLevel))

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/health" || strings.HasPrefix(path, "/static/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
		LogLevel:  log.ERROR,
	}))

	// Compression middleware
	if cfg.Processing.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Processing.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				path := c.Request().URL.Path
				return strings.HasSuffix(path, "/msgpack") || strings.HasSuffix(path, "/ws")
			},
		}))
	}

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if err := api.SetupMiddleware(e, cfg.Advanced.LogLevel == "debug"); err != nil {
		log.Fatalf("Failed to register static routes: %v", err)
	}

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:             fileStore,
		Records:           recordStore,
		Jobs:              jobMgr,
		Renderer:          renderer,
		AllowedExtensions: cfg.AllowedExtensions(),
		AllowDeletion:     cfg.Security.AllowDeletion,
		Rules:             converter.RulesInfo(rulesSource),
		AIModel:           aiModel,
		Version:           Version,
	}))

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	ai := aiModel
	if ai == "" {
		ai = "disabled (rule-based only)"
	}
	guardMode := web.GuardStatus()
	if !web.HasGuardWasm() {
		log.Warnf("[Page] Form guard not embedded, run '%s' and rebuild", web.GuardBuildCommand)
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           COBOL to Java Converter                         ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  AI Model:   %-45s║\n", ai)
	fmt.Printf("║  Page:       %-45s║\n", guardMode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown: %v", err)
	}
	jobMgr.Wait()
}

func logLevel(name string) log.Lvl {
	switch strings.ToLower(name) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
