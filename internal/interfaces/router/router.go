package router

import (
	eventsvc "carbonpay-backend/internal/application/events"
	offsvc "carbonpay-backend/internal/application/offsets"
	projsvc "carbonpay-backend/internal/application/projects"
	purchsvc "carbonpay-backend/internal/application/purchases"
	regsvc "carbonpay-backend/internal/application/registry"
	walletsvc "carbonpay-backend/internal/application/wallets"
	"carbonpay-backend/internal/config"
	"carbonpay-backend/internal/infrastructure/database"
	authhandler "carbonpay-backend/internal/interfaces/handlers/auth"
	eventhandler "carbonpay-backend/internal/interfaces/handlers/events"
	healthhandler "carbonpay-backend/internal/interfaces/handlers/health"
	offhandler "carbonpay-backend/internal/interfaces/handlers/offsets"
	projhandler "carbonpay-backend/internal/interfaces/handlers/projects"
	purchhandler "carbonpay-backend/internal/interfaces/handlers/purchases"
	reghandler "carbonpay-backend/internal/interfaces/handlers/registry"
	wallethandler "carbonpay-backend/internal/interfaces/handlers/wallets"
	"carbonpay-backend/internal/middleware"
	"carbonpay-backend/internal/tokenledger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.JSON)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	ah := &authhandler.Handlers{DB: db, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil {
		tokens := &tokenledger.Store{DB: db}

		rh := &reghandler.Handlers{Service: &regsvc.Service{DB: db}}
		rg := app.Group("/api/v1/registry", middleware.RequireAuth())
		rg.Post("/initialize", rh.Initialize)
		rg.Get("/", rh.Get)

		ph := &projhandler.Handlers{Service: &projsvc.Service{DB: db, Tokens: tokens}}
		pg := app.Group("/api/v1/projects", middleware.RequireAuth())
		pg.Post("/initialize-project", ph.Initialize)
		pg.Get("/get-all-projects", ph.GetAll)
		pg.Get("/get-project/:project_id", ph.GetByID)
		pg.Patch("/deactivate-project/:project_id", ph.Deactivate)

		bh := &purchhandler.Handlers{Service: &purchsvc.Service{DB: db, Tokens: tokens}}
		bg := app.Group("/api/v1/purchases", middleware.RequireAuth())
		bg.Post("/purchase-credits", bh.PurchaseCredits)
		bg.Get("/view-purchases", bh.ViewPurchases)

		oh := &offhandler.Handlers{Service: &offsvc.Service{DB: db, Tokens: tokens}}
		og := app.Group("/api/v1/offsets", middleware.RequireAuth())
		og.Post("/request-offset", oh.RequestOffset)
		og.Get("/view-requests", oh.ViewRequests)
		og.Get("/view-request/:offset_request_id", oh.ViewRequest)

		wh := &wallethandler.Handlers{Service: &walletsvc.Service{DB: db}}
		wg := app.Group("/api/v1/wallets", middleware.RequireAuth())
		wg.Post("/deposit", wh.Deposit)
		wg.Get("/balance", wh.Balance)

		eh := &eventhandler.Handlers{Service: &eventsvc.Service{DB: db}}
		eg := app.Group("/api/v1/events", middleware.RequireAuth())
		eg.Get("/view-events", eh.ViewEvents)
	}

	return app, db, rdb, nil
}
