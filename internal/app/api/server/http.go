package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/adyen-bridge/docs"
	"github.com/fatflowers/adyen-bridge/internal/app/api/handlers"
	mw "github.com/fatflowers/adyen-bridge/internal/app/api/middleware"
	notificationauth "github.com/fatflowers/adyen-bridge/internal/app/service/notification_auth"
	nh "github.com/fatflowers/adyen-bridge/internal/app/service/notification_handler"
	"github.com/fatflowers/adyen-bridge/internal/app/service/order"
	"github.com/fatflowers/adyen-bridge/internal/app/service/session"
	"github.com/fatflowers/adyen-bridge/internal/app/service/statistics"
	cfgpkg "github.com/fatflowers/adyen-bridge/pkg/config"
	"github.com/fatflowers/adyen-bridge/pkg/metrics"
)

func newEngine(log *zap.SugaredLogger) *gin.Engine {
	r := gin.New()
	r.Use(mw.RecoveryMiddleware(log))
	// request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log        *zap.SugaredLogger
	Cfg        *cfgpkg.Config
	DB         *gorm.DB
	Auth       *notificationauth.Authenticator
	Processor  *nh.Processor
	Orders     *order.Service
	Sessions   *session.Service
	Statistics *statistics.Service
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

func registerRoutes(lc fx.Lifecycle, r *gin.Engine, d routeDeps) error {
	log := d.Log
	if d.Cfg.MetricsAddr != "" {
		p, err := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			Registerer: d.Registerer,
			Gatherer:   d.Gatherer,
			Logger:     log,
		})
		if err != nil {
			return fmt.Errorf("failed to register http metrics: %w", err)
		}
		r.Use(p.HandlerFunc())
		var srv *http.Server
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				srv = p.Serve(d.Cfg.MetricsAddr)
				log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			},
		})
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.ErrorHandlerMiddleware(log))
	handlers.RegisterHealthRoutes(pub, d.DB)
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Adyen webhook, authenticated by basic auth + HMAC
	handlers.RegisterWebhookRoutes(pub, d.Auth, d.Processor, log)

	// Storefront APIs, bearer token
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.ErrorHandlerMiddleware(log), mw.BearerAuth(d.Cfg.Auth.JWTSecret))
	handlers.RegisterStorefrontRoutes(apiV1, d.Orders, d.Sessions)

	// Admin APIs, basic auth; not mounted without configured users
	if len(d.Cfg.Auth.AdminUsers) > 0 {
		admin := r.Group("/api/v1/admin")
		admin.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), gin.BasicAuth(gin.Accounts(d.Cfg.Auth.AdminUsers)))
		handlers.RegisterAdminRoutes(admin, d.Orders, d.Statistics)
	} else {
		log.Infow("admin api disabled, no admin users configured")
	}
	return nil
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
