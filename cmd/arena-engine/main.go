package main

import (
	"os"

	"github.com/ericogr/arena-engine/internal/api"
	"github.com/ericogr/arena-engine/internal/config"
	"github.com/ericogr/arena-engine/internal/constants"
	"github.com/ericogr/arena-engine/internal/economy"
	"github.com/ericogr/arena-engine/internal/engine"
	"github.com/ericogr/arena-engine/internal/events"
	"github.com/ericogr/arena-engine/internal/ledger"
	"github.com/ericogr/arena-engine/internal/logging"
	"github.com/ericogr/arena-engine/internal/storage"
	"github.com/ericogr/arena-engine/internal/version"

	"github.com/gin-gonic/gin"
)

func main() {
	checkEnvVars([]string{constants.EnvAdminToken})

	// Content configuration is required. Path may be provided via
	// ARENA_CONFIG or defaults to ./arena_config.json in the current
	// working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = constants.DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Fatal("Missing or invalid arena configuration", err, logging.Fields{
			"config_path": configPath,
			"hint":        "create an arena_config.json with 'resource_types' and 'items' arrays plus optional 'round' and 'server' sections",
		})
	}

	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = constants.DefaultDBPath
	}
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	repo := storage.NewSQLiteRepository(db)

	hub := events.NewHub()
	lg := ledger.New(repo, cfg.ResourceTypes)
	eco := economy.New(repo, cfg.Items, cfg.ReservationPolicy)
	ctrl := engine.NewController(repo, lg, eco, cfg.Items, cfg.GoodEventProbability,
		engine.WithBoostResource(cfg.BoostResource),
		engine.WithSettleHook(hub.BroadcastResult),
	)

	handler := api.NewEngineHandler(lg, eco, ctrl, hub)
	adminToken := os.Getenv(constants.EnvAdminToken)

	router := gin.Default()
	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteEntityResource, handler.GetResource)
		apiRoutes.POST(constants.RouteEntityResourceSpend, handler.SpendResource)
		apiRoutes.GET(constants.RouteEntityBalance, handler.GetBalance)
		apiRoutes.GET(constants.RouteEntityInventory, handler.GetInventory)
		apiRoutes.POST(constants.RouteEntityItemUse, handler.UseItem)
		apiRoutes.GET(constants.RouteRoundCurrent, handler.GetCurrentRound)
		apiRoutes.POST(constants.RouteRoundAttacks, handler.ScheduleAttack)
		apiRoutes.GET(constants.RouteRoundEvents, handler.RoundEvents)

		// Administrative mutations: round lifecycle, grants, inventory
		// management.
		admin := apiRoutes.Group("")
		admin.Use(api.AdminRequired(adminToken))
		admin.POST(constants.RouteEntityResourceBonus, handler.GrantBonusResource)
		admin.POST(constants.RouteEntityBalanceAdjust, handler.AdjustBalance)
		admin.POST(constants.RouteEntityInventoryItem, handler.AddItem)
		admin.DELETE(constants.RouteEntityInventoryItem, handler.RemoveItem)
		admin.POST(constants.RouteRounds, handler.StartRound)
		admin.POST(constants.RouteRoundSettle, handler.SettleRound)
	}

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{
		constants.LogFieldAddr: addr,
		"version":              version.Version,
	})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}

func checkEnvVars(vars []string) {
	for _, v := range vars {
		if os.Getenv(v) == "" {
			logging.Fatal("Required environment variable not set", nil, logging.Fields{"var": v})
		}
	}
}
