// Package wire provides dependency injection for the bastion application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"os"
	"sync"

	cliadapter "github.com/example/bastion/internal/adapters/cli"
	"github.com/example/bastion/internal/adapters/sqlite"
	"github.com/example/bastion/internal/app"
	"github.com/example/bastion/internal/config"
	"github.com/example/bastion/internal/db"
	"github.com/example/bastion/internal/ports/primary"
)

var (
	cfg      *config.Config
	database *sql.DB

	vitalsService     primary.VitalsService
	ledgerService     primary.LedgerService
	expeditionService primary.ExpeditionService
	orchestrator      primary.DailyOrchestrator

	once sync.Once
)

// Config returns the resolved configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// DB returns the shared database handle.
func DB() *sql.DB {
	once.Do(initServices)
	return database
}

// VitalsService returns the singleton VitalsService instance.
func VitalsService() primary.VitalsService {
	once.Do(initServices)
	return vitalsService
}

// LedgerService returns the singleton LedgerService instance.
func LedgerService() primary.LedgerService {
	once.Do(initServices)
	return ledgerService
}

// ExpeditionService returns the singleton ExpeditionService instance.
func ExpeditionService() primary.ExpeditionService {
	once.Do(initServices)
	return expeditionService
}

// Orchestrator returns the singleton DailyOrchestrator instance.
func Orchestrator() primary.DailyOrchestrator {
	once.Do(initServices)
	return orchestrator
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	database, err = db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	logger := log.New(os.Stderr, "bastion: ", log.LstdFlags)
	rng := app.NewRandom(cfg.RNGSeed)

	// Create repository adapters (secondary ports) behind one unit of work
	store := sqlite.NewStore(database)
	catalog := app.NewResourceCatalog(store.ResourceTypes())

	// Create services (primary ports implementation)
	vitals := app.NewVitalsService(store, cfg.Tuning.Limits(), cfg.Location, logger)
	contagion := app.NewContagionService(store, rng, cfg.Location, logger)
	expeditions := app.NewExpeditionService(store, cfg.Tuning, cfg.Location, rng, catalog, logger)

	vitalsService = vitals
	expeditionService = expeditions
	ledgerService = app.NewLedgerService(store, catalog)
	orchestrator = app.NewDailyOrchestrator(vitals, contagion, expeditions, catalog, cfg.Location, logger)
}

// CharacterAdapter returns a new CharacterAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func CharacterAdapter() *cliadapter.CharacterAdapter {
	return CharacterAdapterWithOutput(os.Stdout)
}

// CharacterAdapterWithOutput returns a new CharacterAdapter writing to the given output.
func CharacterAdapterWithOutput(out io.Writer) *cliadapter.CharacterAdapter {
	once.Do(initServices)
	return cliadapter.NewCharacterAdapter(vitalsService, out)
}

// ExpeditionAdapter returns a new ExpeditionAdapter writing to stdout.
func ExpeditionAdapter() *cliadapter.ExpeditionAdapter {
	return ExpeditionAdapterWithOutput(os.Stdout)
}

// ExpeditionAdapterWithOutput returns a new ExpeditionAdapter writing to the given output.
func ExpeditionAdapterWithOutput(out io.Writer) *cliadapter.ExpeditionAdapter {
	once.Do(initServices)
	return cliadapter.NewExpeditionAdapter(expeditionService, out)
}

// LedgerAdapter returns a new LedgerAdapter writing to stdout.
func LedgerAdapter() *cliadapter.LedgerAdapter {
	return LedgerAdapterWithOutput(os.Stdout)
}

// LedgerAdapterWithOutput returns a new LedgerAdapter writing to the given output.
func LedgerAdapterWithOutput(out io.Writer) *cliadapter.LedgerAdapter {
	once.Do(initServices)
	return cliadapter.NewLedgerAdapter(ledgerService, out)
}

// TickAdapter returns a new TickAdapter writing to stdout.
func TickAdapter() *cliadapter.TickAdapter {
	return TickAdapterWithOutput(os.Stdout)
}

// TickAdapterWithOutput returns a new TickAdapter writing to the given output.
func TickAdapterWithOutput(out io.Writer) *cliadapter.TickAdapter {
	once.Do(initServices)
	return cliadapter.NewTickAdapter(orchestrator, out)
}
