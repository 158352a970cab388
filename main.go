package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	auth "Helio/internal/auth"
	consumption "Helio/internal/calc/consumption"
	design "Helio/internal/calc/design"
	batch "Helio/internal/calc/premium/batch"
	importer "Helio/internal/calc/premium/importer"
	report "Helio/internal/calc/report"
	tilt "Helio/internal/calc/tilt"
	config "Helio/internal/config"
	irradiance "Helio/internal/irradiance"
	log "Helio/internal/log"
	repo "Helio/internal/repo"
	sites "Helio/internal/sites"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(origins []string, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(next)
}

type services struct {
	repo      repo.Repository
	archive   *irradiance.Cached
	optimizer *tilt.Optimizer
	options   tilt.Options
}

func optimizerOptions(cfg *config.Config) tilt.Options {
	return tilt.Options{
		MinValidMonths: cfg.Optimizer.MinValidMonths,
		StepDeg:        cfg.Optimizer.StepDeg,
		MaxDeg:         tilt.Int(cfg.Optimizer.MaxDeg),
		Albedo:         tilt.Float(cfg.Optimizer.Albedo),
		Concurrency:    cfg.Optimizer.Concurrency,
		ReferenceYear:  cfg.Irradiance.ReferenceYear,
	}
}

func HandleList(router *mux.Router, cfg *config.Config, svc services) {
	authEnv := &auth.Authenv{
		JWTkey:   []byte(cfg.Server.TokenKey),
		Repo:     svc.repo,
		TokenTTL: cfg.Server.TokenTTL,
		Insecure: cfg.Server.Insecure,
	}
	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":        "ok",
			"cached_months": svc.archive.Len(),
		})
	}).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	tiltH := &tilt.Handler{Optimizer: svc.optimizer}
	consumptionH := &consumption.Handler{}
	designH := &design.Handler{Optimizer: svc.optimizer}
	reportH := &report.Handler{Design: designH}
	importH := &importer.Handler{Options: svc.options}
	batchH := &batch.Handler{Optimizer: svc.optimizer}
	sitesH := &sites.Handler{Repo: svc.repo, Optimizer: svc.optimizer}

	secureApi.HandleFunc("/tools/tilt/calc", tiltH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/tilt/batch", batchH.Tilt).Methods("POST")
	secureApi.HandleFunc("/tools/pv/consumption", consumptionH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/pv/design", designH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/pv/report", reportH.Generate).Methods("POST")
	secureApi.HandleFunc("/tools/pv/export", reportH.Export).Methods("POST")
	secureApi.HandleFunc("/tools/irradiance/import", importH.Irradiance).Methods("POST")

	secureApi.HandleFunc("/sites", sitesH.List).Methods("GET")
	secureApi.HandleFunc("/sites", sitesH.Create).Methods("POST")
	secureApi.HandleFunc("/sites/{id:[0-9]+}", sitesH.Get).Methods("GET")
	secureApi.HandleFunc("/sites/{id:[0-9]+}", sitesH.Delete).Methods("DELETE")
	secureApi.HandleFunc("/sites/{id:[0-9]+}/tilt", sitesH.Tilt).Methods("GET")
}

func openRepo(ctx context.Context, cfg *config.Config) (repo.Repository, *sql.DB, error) {
	if cfg.Database.URL == config.MemoryDatabase {
		log.Warnw("using in-memory storage; users and sites are lost on restart")
		return repo.NewMemory(), nil, nil
	}
	db, err := auth.InitDB(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	pg := repo.NewPostgresDB(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, db, nil
}

// purgeCache drops expired archive entries until ctx is done.
func purgeCache(ctx context.Context, c *irradiance.Cached, every time.Duration) {
	defer wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Purge()
		}
	}
}

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("HELIO_CONFIG"), "path to YAML config")
	debug := pflag.BoolP("debug", "d", false, "enable debug logging")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := log.Init(*debug || cfg.Log.Debug, log.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer log.Sync()

	if cfg.Server.TokenKey == "" {
		log.Fatalf("TOKEN_KEY environment variable is not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, db, err := openRepo(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	archive := irradiance.NewArchive(irradiance.ArchiveOptions{
		BaseURL:           cfg.Irradiance.BaseURL,
		Timeout:           cfg.Irradiance.Timeout,
		RequestsPerSecond: cfg.Irradiance.RequestsPerSecond,
		Retry:             irradiance.RetryPolicy{MaxAttempts: cfg.Irradiance.MaxAttempts, BaseDelay: cfg.Irradiance.BaseDelay},
		CacheTTL:          cfg.Irradiance.CacheTTL,
	})
	opts := optimizerOptions(cfg)
	svc := services{
		repo:      store,
		archive:   archive,
		optimizer: tilt.New(archive, opts),
		options:   opts,
	}

	router := mux.NewRouter()
	HandleList(router, cfg, svc)

	handler := handlers.RecoveryHandler(handlers.PrintRecoveryStack(*debug))(
		handlers.CompressHandler(log.HTTPMiddleware(CORS(cfg.Server.CORSOrigins, router))))

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Irradiance.CacheTTL > 0 {
		wg.Add(1)
		go purgeCache(ctx, archive, cfg.Irradiance.CacheTTL)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infow("starting server", "addr", cfg.Server.Addr, "tls", cfg.Server.TLSCert != "")
		var err error
		if cfg.Server.TLSCert != "" && !cfg.Server.Insecure {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Infow("shutdown signal received, closing active connections")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}
	wg.Wait()
	log.Infow("server stopped")
}
