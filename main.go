package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/cppla/wellbeing/analytics"
	"github.com/cppla/wellbeing/config"
	"github.com/cppla/wellbeing/jobs"
	"github.com/cppla/wellbeing/models"
	"github.com/cppla/wellbeing/repository"
	"github.com/cppla/wellbeing/routes"
	"github.com/cppla/wellbeing/services"
	"github.com/cppla/wellbeing/utils"
)

// application holds the wired services shared by the server and the CLI.
type application struct {
	cfg       config.AppConfig
	deps      routes.Deps
	demo      *services.DemoService
	closeFunc func()
}

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	app := bootstrap(cfg)
	if len(os.Args) > 1 && os.Args[1] == "demo:purge" {
		code := runDemoPurge(app.demo, cfg.DemoPurgeHours, os.Args[2:])
		app.closeFunc()
		_ = utils.Logger.Sync()
		os.Exit(code)
	}

	serve(app)
	app.closeFunc()
	_ = utils.Logger.Sync()
}

func bootstrap(cfg config.AppConfig) *application {
	db := config.InitDatabase(&models.User{}, &models.CheckIn{})

	var cache services.Cache
	blacklist := utils.NewTokenBlacklist(nil)
	closeFunc := func() {}
	rc, err := utils.NewRedisClient(cfg)
	if err != nil {
		utils.Sugar.Warnf("redis unavailable, using in-process cache and token blacklist: %v", err)
		_ = rc.Close()
		cache = utils.NewMemoryCache()
	} else {
		cache = utils.NewRedisCache(rc)
		blacklist = utils.NewTokenBlacklist(rc)
		closeFunc = func() { _ = rc.Close() }
	}

	clock := analytics.LocationClock{Location: cfg.Location()}
	checkInRepo := repository.NewCheckInRepository(db)
	userRepo := repository.NewUserRepository(db)
	engine := analytics.NewEngine(checkInRepo, clock)

	demo := services.NewDemoService(userRepo, checkInRepo, cache, clock, services.DemoConfig{
		EmailDomain: cfg.DemoEmailDomain,
		SeedDays:    cfg.DemoSeedDays,
		SeedMax:     cfg.DemoSeedMax,
	})

	return &application{
		cfg: cfg,
		deps: routes.Deps{
			Auth:      services.NewAuthService(userRepo, cfg.DemoEmailDomain),
			CheckIns:  services.NewCheckInService(checkInRepo, cache, clock),
			Dashboard: services.NewDashboardService(checkInRepo, engine, cache, cfg.DashboardCacheTTL(), cfg.OverviewOptions()),
			Demo:      demo,
			Issuer:    utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL()),
			Blacklist: blacklist,
		},
		demo:      demo,
		closeFunc: closeFunc,
	}
}

func serve(app *application) {
	cfg := app.cfg
	r := routes.SetupRouter(cfg, app.deps)

	cronMgr := jobs.NewCronManager(jobs.NewDemoPurgeJob(app.demo, cfg.DemoPurgeHours))
	if err := cronMgr.RegisterJobs(cfg.DemoPurgeSchedule); err != nil {
		utils.Sugar.Fatalf("register cron jobs: %v", err)
	}
	cronMgr.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		cronMgr.Stop()
		return nil
	})

	g.Go(func() error {
		defer cancel()
		utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
		return utils.GraceServer(":"+cfg.AppPort, r, cancel)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
	utils.Logger.Info("server exited")
}
