package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/mentorlane/mentorlane/internal/billing"
	"github.com/mentorlane/mentorlane/internal/billing/checkout"
	"github.com/mentorlane/mentorlane/internal/billing/webhook"
	"github.com/mentorlane/mentorlane/internal/config"
	"github.com/mentorlane/mentorlane/internal/mentorship"
	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	"github.com/mentorlane/mentorlane/internal/mentorshipfile"
	filedomain "github.com/mentorlane/mentorlane/internal/mentorshipfile/domain"
	"github.com/mentorlane/mentorlane/internal/message"
	messagedomain "github.com/mentorlane/mentorlane/internal/message/domain"
	"github.com/mentorlane/mentorlane/internal/observability"
	obsmiddleware "github.com/mentorlane/mentorlane/internal/observability/logger"
	obsmetrics "github.com/mentorlane/mentorlane/internal/observability/metrics"
	obstracing "github.com/mentorlane/mentorlane/internal/observability/tracing"
	"github.com/mentorlane/mentorlane/internal/profile"
	profiledomain "github.com/mentorlane/mentorlane/internal/profile/domain"
	"github.com/mentorlane/mentorlane/internal/qna"
	qnadomain "github.com/mentorlane/mentorlane/internal/qna/domain"
	"github.com/mentorlane/mentorlane/internal/ratelimit"
	"github.com/mentorlane/mentorlane/internal/session"
	sessiondomain "github.com/mentorlane/mentorlane/internal/session/domain"
	"github.com/mentorlane/mentorlane/internal/subscription"
	subscriptiondomain "github.com/mentorlane/mentorlane/internal/subscription/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	profile.Module,
	subscription.Module,
	mentorship.Module,
	session.Module,
	message.Module,
	qna.Module,
	mentorshipfile.Module,
	ratelimit.Module,
	billing.Module,
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

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
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
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	profileSvc      profiledomain.Service
	subscriptionSvc subscriptiondomain.Service
	mentorshipSvc   mentorshipdomain.Service
	sessionSvc      sessiondomain.Service
	messageSvc      messagedomain.Service
	qnaSvc          qnadomain.Service
	fileSvc         filedomain.Service
	checkoutSvc     *checkout.Service
	webhooks        *webhook.Dispatcher
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	ProfileSvc      profiledomain.Service
	SubscriptionSvc subscriptiondomain.Service
	MentorshipSvc   mentorshipdomain.Service
	SessionSvc      sessiondomain.Service
	MessageSvc      messagedomain.Service
	QnaSvc          qnadomain.Service
	FileSvc         filedomain.Service
	CheckoutSvc     *checkout.Service
	Webhooks        *webhook.Dispatcher
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		profileSvc:      p.ProfileSvc,
		subscriptionSvc: p.SubscriptionSvc,
		mentorshipSvc:   p.MentorshipSvc,
		sessionSvc:      p.SessionSvc,
		messageSvc:      p.MessageSvc,
		qnaSvc:          p.QnaSvc,
		fileSvc:         p.FileSvc,
		checkoutSvc:     p.CheckoutSvc,
		webhooks:        p.Webhooks,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Mentor discovery (public) --------
	api.GET("/mentors", s.ListMentors)
	api.GET("/mentors/:slug", s.GetMentorBySlug)

	authed := api.Group("", s.AuthRequired())

	// -------- Profile --------
	authed.GET("/profile", s.GetProfile)
	authed.POST("/profile", s.CreateProfile)
	authed.PATCH("/profile", s.UpdateProfile)

	// -------- Subscriptions --------
	authed.GET("/subscriptions", s.ListSubscriptions)
	authed.POST("/subscriptions", s.CreateSubscription)
	authed.GET("/subscriptions/:id", s.GetSubscriptionByID)
	authed.POST("/subscriptions/:id/cancel", s.CancelSubscription)
	authed.POST("/subscriptions/:id/reactivate", s.ReactivateSubscription)

	// -------- Mentorships --------
	authed.GET("/mentorships", s.ListMentorships)
	authed.GET("/mentorships/:id", s.GetMentorshipByID)
	authed.PATCH("/mentorships/:id", s.UpdateMentorship)
	authed.GET("/mentorships/:id/posts", s.ListMentorshipPosts)
	authed.POST("/mentorships/:id/posts", s.CreateMentorshipPost)
	authed.GET("/mentorships/:id/files", s.ListMentorshipFiles)
	authed.POST("/mentorships/:id/files", s.CreateMentorshipFile)

	authed.POST("/posts/:id/replies", s.CreatePostReply)

	// -------- Sessions --------
	authed.GET("/sessions", s.ListSessions)
	authed.POST("/sessions", s.CreateSession)
	authed.GET("/sessions/:id", s.GetSessionByID)
	authed.PATCH("/sessions/:id", s.UpdateSession)

	// -------- Messages --------
	authed.POST("/messages", s.SendMessage)
	authed.GET("/messages/unread-count", s.GetUnreadCount)
	authed.GET("/messages/:userId", s.GetMessageThread)

	// -------- Dashboard --------
	authed.GET("/dashboard", s.GetDashboard)

	// -------- Checkout --------
	authed.GET("/checkout", s.CheckoutSession)
	authed.GET("/checkout/subscription", s.CheckoutSubscription)
}

func (s *Server) registerWebhookRoutes() {
	api := s.engine.Group("/api")

	api.POST("/webhooks/stripe", s.HandleBillingWebhook)
	api.GET("/webhooks/stripe", s.BillingWebhookStatus)
}
