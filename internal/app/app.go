package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "agencydesk/docs"
	"agencydesk/internal/config"
	"agencydesk/internal/handlers"
	"agencydesk/internal/middleware"
	"agencydesk/internal/models"
	"agencydesk/internal/pdf"
	"agencydesk/internal/pipeline"
	"agencydesk/internal/realtime"
	"agencydesk/internal/repositories"
	"agencydesk/internal/routes"
	"agencydesk/internal/services"
)

const fontPath = "assets/fonts/DejaVuSans.ttf"

type App struct {
	cfg *config.Config
	log *zap.Logger

	store    *Store
	hub      *realtime.Hub
	notifier *services.WonNotifier
	redis    *redis.Client
	relay    *realtime.RedisRelay

	Router *gin.Engine
}

// New opens storage and wires every service behind the router.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a, err := build(cfg, log, store.Deals, store.Finance)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	a.store = store
	log.Info("[app] storage ready", zap.String("driver", cfg.Database.Driver))
	return a, nil
}

func build(cfg *config.Config, log *zap.Logger, deals repositories.DealRepository, finance repositories.FinanceRepository) (*App, error) {
	// === Services ===
	dealService := services.NewDealService(deals, log.Named("deals"))
	reportService := services.NewReportService(deals, finance, log.Named("reports"))
	financeService := services.NewFinanceService(finance, log.Named("finance"))

	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	if emailService == nil {
		log.Info("[app] smtp not configured, won invites disabled")
	}

	telegram, err := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.SalesChatID, log.Named("tg"))
	if err != nil {
		log.Warn("[app] telegram disabled", zap.Error(err))
		telegram, _ = services.NewTelegramService("", 0, log.Named("tg"))
	}
	notifier := services.NewWonNotifier(emailService, telegram, cfg.Email.PortalURL, log.Named("won"))

	// === Realtime ===
	hub := realtime.NewHub(realtime.HubConfig{
		NewBoard: dealService.Board,
		Reload: func(ctx context.Context) ([]models.Deal, error) {
			return dealService.List(ctx, models.DealFilter{})
		},
		Listeners:      []pipeline.Listener{notifier.Listener()},
		ConfirmTimeout: cfg.Pipeline.ConfirmTimeout,
		Log:            log.Named("board"),
	})

	a := &App{cfg: cfg, log: log, hub: hub, notifier: notifier}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		a.redis = redis.NewClient(opts)
		a.relay = realtime.NewRedisRelay(a.redis, cfg.Redis.Channel, hub, log.Named("redis"))
		hub.SetPublisher(a.relay)
	}

	// === Handlers ===
	dealHandler := handlers.NewDealHandler(dealService, hub, notifier.Listener(), log.Named("http"))
	reportHandler := handlers.NewReportHandler(reportService, pdf.NewReportGenerator(fontPath))
	financeHandler := handlers.NewFinanceHandler(financeService)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log.Named("http")))
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, []byte(cfg.Auth.JWTSecret), dealHandler, reportHandler, financeHandler)
	a.Router = router
	return a, nil
}

// Run serves until ctx is cancelled, then drains board sessions and pending
// notifications before closing storage.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.cfg.ListenAddr(),
		Handler: a.Router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("[app] listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if a.relay != nil {
		g.Go(func() error {
			return a.relay.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown(srv)
	})
	return g.Wait()
}

func (a *App) shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.log.Info("[app] shutting down")
	err := srv.Shutdown(ctx)
	a.hub.Close()
	a.notifier.Wait()
	if a.redis != nil {
		err = errors.Join(err, a.redis.Close())
	}
	if a.store != nil {
		err = errors.Join(err, a.store.Close(ctx))
	}
	return err
}
