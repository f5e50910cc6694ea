package router

import (
	authsvc "akrion-backend/internal/application/auth"
	catsvc "akrion-backend/internal/application/catalog"
	dealersvc "akrion-backend/internal/application/dealers"
	emailsvc "akrion-backend/internal/application/emails"
	inqsvc "akrion-backend/internal/application/inquiries"
	listsvc "akrion-backend/internal/application/listings"
	rewsvc "akrion-backend/internal/application/rewards"
	txsvc "akrion-backend/internal/application/transactions"
	usersvc "akrion-backend/internal/application/users"
	"akrion-backend/internal/config"
	"akrion-backend/internal/infrastructure/database"
	authhandler "akrion-backend/internal/interfaces/handlers/auth"
	cathandler "akrion-backend/internal/interfaces/handlers/catalog"
	dealerhandler "akrion-backend/internal/interfaces/handlers/dealers"
	healthhandler "akrion-backend/internal/interfaces/handlers/health"
	inqhandler "akrion-backend/internal/interfaces/handlers/inquiries"
	listhandler "akrion-backend/internal/interfaces/handlers/listings"
	rewhandler "akrion-backend/internal/interfaces/handlers/rewards"
	txhandler "akrion-backend/internal/interfaces/handlers/transactions"
	userhandler "akrion-backend/internal/interfaces/handlers/users"
	"akrion-backend/internal/middleware"
	"akrion-backend/internal/pkg/constants"

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
		AllowLocalDev: cfg.AllowCrossSiteDev,
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
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)

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

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	var emailSender emailsvc.Sender
	if cfg.SendinblueAPIKey != "" {
		emailSender = &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
	}
	ah := &authhandler.Handlers{
		DB:         db,
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
		Email:      emailSender,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil && rdb != nil {
		policy := rewsvc.RatePolicy{
			SaleRate:          cfg.EcoPointsSaleRate,
			PurchaseRate:      cfg.EcoPointsPurchaseRate,
			ReviewBonusPoints: cfg.EcoPointsReviewBonus,
		}

		// Users
		us := &usersvc.Service{DB: db}
		uh := &userhandler.Handlers{Service: us}
		ug := app.Group("/api/v1/users", middleware.RequireAuth())
		ug.Get("/me", uh.GetMe)
		ug.Patch("/me", uh.UpdateMe)

		// Rewards
		rws := &rewsvc.Service{DB: db}
		rwh := &rewhandler.Handlers{Service: rws}
		rwg := app.Group("/api/v1/rewards", middleware.RequireAuth())
		rwg.Get("/balance", middleware.AuthorizePermission(constants.ViewLedger), rwh.Balance)
		rwg.Get("/history", middleware.AuthorizePermission(constants.ViewLedger), rwh.History)
		rwg.Post("/award", middleware.AuthorizePermission(constants.AwardPoints), rwh.Award)
		rwg.Post("/spend", middleware.AuthorizePermission(constants.SpendPoints), rwh.Spend)

		// Inquiries service is shared with the dealer inbox endpoints.
		iqs := &inqsvc.Service{DB: db, Email: emailSender}

		// Dealers
		ds := &dealersvc.Service{DB: db, Policy: policy}
		dh := &dealerhandler.Handlers{Service: ds, Inquiries: iqs}
		dg := app.Group("/api/v1/dealers", middleware.RequireAuth())
		dg.Post("/", middleware.AuthorizePermission(constants.ManageDealerProfile), dh.CreateProfile)
		dg.Get("/", dh.ListDealers)
		dg.Get("/me", middleware.AuthorizePermission(constants.ManageDealerProfile), dh.GetMyProfile)
		dg.Get("/me/inquiries", middleware.AuthorizePermission(constants.ManageDealerProfile), dh.ListInbox)
		dg.Post("/verify", middleware.AuthorizePermission(constants.VerifyDealer), dh.BulkVerify)
		dg.Post("/reject", middleware.AuthorizePermission(constants.VerifyDealer), dh.BulkReject)
		dg.Post("/inquiries/:inquiry_id/respond", middleware.AuthorizePermission(constants.RespondInquiry), dh.RespondInquiry)
		dg.Post("/inquiries/:inquiry_id/close", dh.CloseInquiry)
		dg.Get("/:dealer_id", dh.GetDealer)
		dg.Patch("/:dealer_id/verification", middleware.AuthorizePermission(constants.VerifyDealer), dh.SetVerification)
		dg.Post("/:dealer_id/ratings", middleware.AuthorizePermission(constants.SubmitRating), dh.SubmitRating)
		dg.Get("/:dealer_id/ratings", dh.ListRatings)
		dg.Post("/:dealer_id/inquiries", dh.CreateInquiry)

		// Catalog
		cs := &catsvc.Service{DB: db}
		ch := &cathandler.Handlers{Service: cs, Dealers: ds}
		cg := app.Group("/api/v1/catalog", middleware.RequireAuth())
		cg.Post("/categories", middleware.AuthorizePermission(constants.ManageCatalog), ch.CreateCategory)
		cg.Get("/categories", ch.ListCategories)
		cg.Post("/materials", middleware.AuthorizePermission(constants.ManageCatalog), ch.CreateMaterial)
		cg.Get("/materials", ch.ListMaterials)
		cg.Post("/reusable-categories", middleware.AuthorizePermission(constants.ManageCatalog), ch.CreateReusableCategory)
		cg.Get("/reusable-categories", ch.ListReusableCategories)
		cg.Put("/prices", middleware.AuthorizePermission(constants.ManagePrices), ch.UpsertPrice)
		cg.Delete("/prices/:material_id/:grade", middleware.AuthorizePermission(constants.ManagePrices), ch.DeactivatePrice)
		cg.Get("/materials/:material_id/prices", ch.ComparePrices)

		// Listings
		ls := &listsvc.Service{DB: db, TTLDays: cfg.ListingTTLDays}
		lh := &listhandler.Handlers{Service: ls}
		lg := app.Group("/api/v1/listings", middleware.RequireAuth())
		lg.Post("/scrap", middleware.AuthorizePermission(constants.CreateListing), lh.CreateScrap)
		lg.Post("/reusable", middleware.AuthorizePermission(constants.CreateListing), lh.CreateReusable)
		lg.Get("/scrap", lh.ListScrap)
		lg.Get("/reusable", lh.ListReusable)
		lg.Get("/:kind/:listing_id", lh.Get)
		lg.Patch("/:kind/:listing_id/status", middleware.AuthorizePermission(constants.TransitionListing), lh.Transition)
		lg.Post("/:kind/:listing_id/assessment", lh.ApplyAssessment)

		// Inquiries
		iqh := &inqhandler.Handlers{Service: iqs}
		iqg := app.Group("/api/v1/inquiries", middleware.RequireAuth())
		iqg.Post("/", middleware.AuthorizePermission(constants.CreateInquiry), iqh.Create)
		iqg.Get("/", iqh.ListMine)
		iqg.Get("/listing/:kind/:listing_id", iqh.ListForListing)
		iqg.Get("/:inquiry_id", iqh.Get)
		iqg.Post("/:inquiry_id/respond", middleware.AuthorizePermission(constants.RespondInquiry), iqh.Respond)
		iqg.Post("/:inquiry_id/reject", middleware.AuthorizePermission(constants.RespondInquiry), iqh.Reject)
		iqg.Post("/:inquiry_id/accept", middleware.AuthorizePermission(constants.AcceptInquiry), iqh.Accept)

		// Transactions
		txs := &txsvc.Service{DB: db, Policy: policy}
		txh := &txhandler.Handlers{Service: txs}
		txg := app.Group("/api/v1/transactions", middleware.RequireAuth())
		txg.Get("/", txh.ListMine)
		txg.Get("/:tx_id", txh.Get)
		txg.Patch("/:tx_id/status", middleware.AuthorizePermission(constants.AdvanceTransaction), txh.Advance)
		txg.Post("/:tx_id/cancel", middleware.AuthorizePermission(constants.AdvanceTransaction), txh.Cancel)
		txg.Post("/:tx_id/dispute", middleware.AuthorizePermission(constants.AdvanceTransaction), txh.Dispute)
	}

	return app, db, rdb, nil
}
