package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hearth/config"
	"hearth/internal/db"
	"hearth/internal/health"
	"hearth/internal/logs"
	"hearth/internal/middleware"
	"hearth/internal/remote"
	"hearth/internal/reports"
	"hearth/internal/store"
	"hearth/internal/syncsvc"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db     *gorm.DB
	remote remote.Client
	engine *syncsvc.Engine
	runner *syncsvc.Runner

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	// 1) Логи
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	// 2) БД: локальное зеркало обязательно
	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if d == nil {
		log.Fatal("database.driver is empty: the mirror needs a database")
	}
	a.db = d
	if err := db.Migrate(a.db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}
	if err := db.EnsureMeasurementIndexes(a.db); err != nil {
		logs.Logger.Warnf("measurement indexes: %v", err)
	}

	// 3) Удалённое хранилище документов
	if a.cfg.Remote.BaseURL != "" {
		a.remote = remote.NewHTTPClient(a.cfg.Remote.BaseURL,
			time.Duration(a.cfg.Remote.TimeoutSeconds)*time.Second)
	} else {
		// без удалённого адреса работаем поверх пустого in-memory
		// стора: API доступен, зеркало не пополняется
		logs.Logger.Warn("remote.base_url is empty, using in-memory document store")
		a.remote = remote.NewMemClient()
	}

	repo := store.NewRepo(a.db)
	a.engine = syncsvc.NewEngine(a.remote, repo)
	a.runner = syncsvc.NewRunner(a.engine,
		time.Duration(a.cfg.Sync.PollIntervalMinutes)*time.Minute)

	// 4) Роутер + middleware
	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)
	a.Router.Use(middleware.CORS)

	health.RegisterRoutesWithDB(a.Router, a.db) // /healthz и /readyz

	// 5) HTTP-ручки: синхронизация и отчёты
	syncsvc.NewHTTP(a.engine).RegisterRoutes(a.Router)

	svc := reports.NewService(repo, a.remote,
		a.cfg.Energy.AdminFallbackMin, a.cfg.Energy.AdminFallbackMax)
	reports.NewHTTP(svc).RegisterRoutes(a.Router)

	a.Router.Walk(func(rt *mux.Route, r *mux.Router, ancestors []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	// фоновый цикл синхронизации
	if a.cfg.Sync.PollIntervalMinutes > 0 {
		go a.runner.Run(a.ctx)
	} else if a.cfg.Sync.RunOnStart {
		go a.engine.RunSyncPass(a.ctx)
	}

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	return nil
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
