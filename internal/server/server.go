// Package server exposes the marketplace over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/mginvestments/marketplace/internal/config"
	creditdomain "github.com/mginvestments/marketplace/internal/credit/domain"
	paymentdomain "github.com/mginvestments/marketplace/internal/payment/domain"
	"github.com/mginvestments/marketplace/internal/reconcile"
	schooldomain "github.com/mginvestments/marketplace/internal/school/domain"
	subscriptiondomain "github.com/mginvestments/marketplace/internal/subscription/domain"
	teacherdomain "github.com/mginvestments/marketplace/internal/teacher/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	genID           *snowflake.Node
	schoolSvc       schooldomain.Service
	teacherSvc      teacherdomain.Service
	creditSvc       creditdomain.Service
	subscriptionSvc subscriptiondomain.Service
	paymentSvc      paymentdomain.Service
	reconcileSvc    *reconcile.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	GenID           *snowflake.Node
	SchoolSvc       schooldomain.Service
	TeacherSvc      teacherdomain.Service
	CreditSvc       creditdomain.Service
	SubscriptionSvc subscriptiondomain.Service
	PaymentSvc      paymentdomain.Service
	ReconcileSvc    *reconcile.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		genID:           p.GenID,
		schoolSvc:       p.SchoolSvc,
		teacherSvc:      p.TeacherSvc,
		creditSvc:       p.CreditSvc,
		subscriptionSvc: p.SubscriptionSvc,
		paymentSvc:      p.PaymentSvc,
		reconcileSvc:    p.ReconcileSvc,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1")

	// -------- Schools --------
	api.GET("/schools", s.ListSchools)
	api.POST("/schools", s.CreateSchool)
	api.GET("/schools/:id", s.GetSchoolByID)

	// -------- Credits --------
	api.GET("/schools/:id/credits/balance", s.GetCreditBalance)
	api.POST("/schools/:id/credits/purchase", s.PurchaseCredits)
	api.GET("/schools/:id/credits/history", s.GetCreditHistory)
	api.GET("/schools/:id/contacts", s.GetContactHistory)
	api.GET("/schools/:id/contacts/:teacherId/eligibility", s.CanContactTeacher)
	api.POST("/schools/:id/contacts/:teacherId", s.ContactTeacher)

	// -------- Subscriptions --------
	api.POST("/schools/:id/subscriptions", s.CreateSubscription)
	api.GET("/schools/:id/subscriptions/active", s.GetActiveSubscription)

	// -------- Teachers --------
	api.GET("/teachers", s.ListTeachers)
	api.POST("/teachers", s.CreateTeacher)
	api.GET("/teachers/:id", s.GetTeacherByID)
	api.POST("/teachers/import", s.ImportTeachers)

	// -------- Packages & payments --------
	api.GET("/packages", s.ListPackages)
	api.POST("/payments/requests", s.InitiatePayment)
	api.GET("/payments/requests/:reference", s.GetPaymentByReference)
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/payments/:provider", s.HandlePaymentWebhook)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/v1/admin")

	admin.GET("/reconcile/schools/duplicates", s.FindDuplicateSchools)
	admin.POST("/reconcile/schools/duplicates/resolve", s.ResolveDuplicateSchools)
	admin.GET("/reconcile/schools/hidden", s.FindHiddenSchools)
	admin.POST("/payments/confirm-pending", s.ConfirmPendingPayments)
}

func registerGin(cfg config.Config) *gin.Engine {
	return NewEngine(cfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)
