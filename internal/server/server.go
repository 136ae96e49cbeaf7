package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vyaparlabs/gstbill/internal/catalog"
	catalogdomain "github.com/vyaparlabs/gstbill/internal/catalog/domain"
	"github.com/vyaparlabs/gstbill/internal/config"
	"github.com/vyaparlabs/gstbill/internal/invoice"
	invoicedomain "github.com/vyaparlabs/gstbill/internal/invoice/domain"
	"github.com/vyaparlabs/gstbill/internal/invoice/render"
	"github.com/vyaparlabs/gstbill/internal/observability"
	obsmiddleware "github.com/vyaparlabs/gstbill/internal/observability/logger"
	obsmetrics "github.com/vyaparlabs/gstbill/internal/observability/metrics"
	obstracing "github.com/vyaparlabs/gstbill/internal/observability/tracing"
	"github.com/vyaparlabs/gstbill/internal/payment"
	paymentdomain "github.com/vyaparlabs/gstbill/internal/payment/domain"
	"github.com/vyaparlabs/gstbill/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	catalog.Module,
	invoice.Module,
	payment.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.ListenAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	catalogSvc catalogdomain.CatalogService
	invoiceSvc invoicedomain.Service
	paymentSvc paymentdomain.Service
	renderer   render.Renderer
	pdf        pdf.Provider
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	CatalogSvc catalogdomain.CatalogService
	InvoiceSvc invoicedomain.Service
	PaymentSvc paymentdomain.Service
	Renderer   render.Renderer
	PDF        pdf.Provider
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		catalogSvc: p.CatalogSvc,
		invoiceSvc: p.InvoiceSvc,
		paymentSvc: p.PaymentSvc,
		renderer:   p.Renderer,
		pdf:        p.PDF,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AdminAuthRequired())

	// -------- Services --------
	api.GET("/services", s.ListServices)
	api.POST("/services", s.CreateService)
	api.GET("/services/:id", s.GetServiceByID)
	api.PATCH("/services/:id", s.UpdateService)
	api.DELETE("/services/:id", s.DeleteService)

	// -------- Transactions --------
	api.GET("/transactions", s.ListTransactions)
	api.POST("/transactions", s.CreateTransaction)
	api.POST("/transactions/test", s.CreateTestTransaction)
	api.GET("/transactions/:id", s.GetTransactionByID)
	api.DELETE("/transactions/:id", s.DeleteTransaction)

	// -------- Invoice renditions --------
	api.GET("/transactions/:id/render", s.RenderInvoice)
	api.GET("/transactions/:id/pdf", s.DownloadInvoicePDF)

	// -------- Payments --------
	api.POST("/payments/orders", s.CreatePaymentOrder)
	api.POST("/payments/links", s.CreatePaymentLink)
	api.GET("/payments/orders/:order_id/status", s.GetPaymentOrderStatus)
}

// registerPublicRoutes mounts the endpoints the gateway checkout hits
// directly from the customer's browser. They carry no admin token; the
// HMAC signature is the authentication.
func (s *Server) registerPublicRoutes() {
	s.engine.POST("/api/payments/verify", s.VerifyPayment)
	// Payment links redirect the browser with the fields as query params.
	s.engine.GET("/api/payments/verify", s.VerifyPayment)
}
