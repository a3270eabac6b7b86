// Command sweep simulates several scenario workbooks concurrently with
// seeds derived from one base seed, so the whole portfolio is reproducible.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"schedrisk/adapters/excel"
	"schedrisk/adapters/montecarlo"
	"schedrisk/adapters/postgres"
	"schedrisk/app"
	"schedrisk/domain/risk"
	"schedrisk/internal/config"
	"schedrisk/ports"
)

func main() {
	_ = godotenv.Load()

	baseSeed := flag.Int64("seed", 0, "base seed for the sweep")
	trials := flag.Int("trials", 0, "trial count override for every scenario")
	persist := flag.Bool("persist", false, "persist run summaries to the database")
	report := flag.Bool("report", false, "write Excel risk reports")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: sweep [flags] scenario.xlsx [scenario.xlsx ...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	scenarios := make([]*risk.Scenario, 0, len(paths))
	for _, path := range paths {
		scenario, err := excel.NewScenarioReader(path).Read()
		if err != nil {
			log.Fatalf("scenario %s: %v", path, err)
		}
		scenarios = append(scenarios, scenario)
	}

	engine := montecarlo.NewEngine(montecarlo.Config{Tolerance: cfg.Simulation.Tolerance})
	rng := ports.NewSeededRNG()
	reports := excel.NewReportWriter(cfg.Report.OutputDir)

	var store ports.ResultStore
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewResultRepository(db)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("database: %v", err)
		}
		store = repo
	}

	sim := app.NewSimulationService(engine, rng, store, reports)
	sweep := app.NewPortfolioSweepService(sim)

	result, err := sweep.Run(context.Background(), app.SweepRequest{
		Scenarios:   scenarios,
		BaseSeed:    *baseSeed,
		Trials:      *trials,
		Concurrency: cfg.Simulation.Concurrency,
		Persist:     *persist,
		Report:      *report,
	})
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}

	fmt.Printf("Sweep finished: %d scenarios, base seed %d, %dms\n",
		len(result.Results), result.BaseSeed, result.RuntimeMs)
	for _, r := range result.Results {
		fmt.Printf("  %-20s p80=%8.1f  mean=%8.1f  run=%s\n",
			r.Scenario, r.Output.Duration.P80, r.Output.Duration.Mean, r.RunID)
	}
}
