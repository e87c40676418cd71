// Пакет blogdoc предоставляет HTTP API сервиса постов блога: кодек компактного формата документов редактора, импорт HTML и хранение постов с экспортом в Markdown и PDF.
//
// Основные возможности:
//   - Сжатие и восстановление документов редактора, оглавление и оценка выигрыша по размеру.
//   - Импорт HTML постов старого редактора.
//   - Хранение постов в key-value хранилище с ограничением размера значения.
//   - Метрики Prometheus на отдельном порту и периодическое обновление статистики хранилища.
package blogdoc

//go:generate go run ../../cmd/docsgen/main.go -src apierrors/apierrors.go -out ../../docs/api_errors.md

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aisa-it/blogdoc/internal/blogdoc/business"
	"github.com/aisa-it/blogdoc/internal/blogdoc/config"
	"github.com/aisa-it/blogdoc/internal/blogdoc/cronmanager"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const bodyLimit = "5M"

type Services struct {
	cfg     *config.Config
	posts   *business.Posts
	version string
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "BlogDoc")
		return next(c)
	}
}

// NewServer собирает echo со всеми маршрутами API, не запуская его. Метрики запросов регистрируются в reg, при nil не собираются.
func NewServer(cfg *config.Config, posts *business.Posts, version string, reg prometheus.Registerer) *echo.Echo {
	s := &Services{cfg: cfg, posts: posts, version: version}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		if code != http.StatusRequestEntityTooLarge {
			slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		}
		EErrorStatus(c, code)
	}

	// Global middlewares
	e.Use(ServerHeader)
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     5,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			// PDF уже сжат
			return c.Path() == "/api/posts/:postId/pdf/"
		},
	}))
	if reg != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "blogdoc",
			Registerer: reg,
		}))
	}
	e.Pre(middleware.AddTrailingSlash())

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")

	s.AddCodecServices(apiGroup)
	s.AddPostServices(apiGroup)

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version":       s.version,
			"storage":       cfg.StorageBackend,
			"max_blob_size": cfg.MaxBlobSize,
		})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	return e
}

// Server запускает API, сервер метрик и задачи cron. Возвращается после SIGINT/SIGTERM и остановки серверов.
func Server(cfg *config.Config, posts *business.Posts, version string) {
	var reg prometheus.Registerer
	if !cfg.MetricsDisable {
		reg = prometheus.DefaultRegisterer
	}
	e := NewServer(cfg, posts, version, reg)

	statsSchedule := cfg.StatsCron
	if err := cronmanager.ValidateSchedule(statsSchedule); err != nil {
		slog.Warn("Invalid STATS_CRON, fallback to default", "schedule", statsSchedule, "err", err)
		statsSchedule = config.DefaultStatsCron
	}
	cm := cronmanager.NewCronManager(cronmanager.JobRegistry{
		"storage_stats": {Func: posts.RefreshStats, Schedule: statsSchedule, RunOnStart: true},
	})
	if err := cm.LoadJobs(); err != nil {
		slog.Error("Load cron jobs", "err", err)
	}
	cm.Start()
	defer cm.Stop()

	var metrics *echo.Echo
	if !cfg.MetricsDisable {
		metrics = startMetrics(cfg.MetricsAddr)
	}

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server fail", "err", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutdown server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown", "err", err)
	}
	if metrics != nil {
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server shutdown", "err", err)
		}
	}
}

func startMetrics(addr string) *echo.Echo {
	bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blogdoc",
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTimeGauge.Set(float64(time.Now().UnixMilli()))

	if err := prometheus.Register(bootTimeGauge); err != nil {
		slog.Error("Register boot time gauge", "err", err)
		os.Exit(1)
	}
	if err := business.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		slog.Error("Register posts metrics", "err", err)
		os.Exit(1)
	}

	metrics := echo.New()
	metrics.HideBanner = true
	metrics.HidePort = true
	metrics.GET("/metrics", echoprometheus.NewHandler()) // adds route to serve gathered metrics
	go func() {
		if err := metrics.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()
	return metrics
}
