// Command simulate runs one schedule-risk scenario workbook through the
// Monte Carlo engine and prints the headline results.
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
	"schedrisk/internal/config"
	"schedrisk/ports"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	scenarioPath := flag.String("scenario", "", "path to the scenario workbook (.xlsx)")
	trials := flag.Int("trials", 0, "trial count override (0 uses scenario/config)")
	seed := flag.Int64("seed", 0, "seed override for reproducible runs")
	persist := flag.Bool("persist", false, "persist the run summary to the database")
	report := flag.Bool("report", false, "write an Excel risk report")
	flag.Parse()

	if *scenarioPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	service, cleanup, err := buildService(cfg)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}
	defer cleanup()

	scenario, err := excel.NewScenarioReader(*scenarioPath).Read()
	if err != nil {
		log.Fatalf("scenario: %v", err)
	}

	runTrials := *trials
	if runTrials == 0 && scenario.Trials == 0 {
		runTrials = cfg.Simulation.DefaultTrials
	}
	runSeed := *seed
	if runSeed == 0 {
		runSeed = cfg.Simulation.DefaultSeed
	}

	result, err := service.Run(ctx, app.SimulationRequest{
		Scenario: scenario,
		Trials:   runTrials,
		Seed:     runSeed,
		Persist:  *persist,
		Report:   *report,
	})
	if err != nil {
		log.Fatalf("simulate: %v", err)
	}

	printResult(result)
}

func buildService(cfg *config.Config) (*app.SimulationService, func(), error) {
	engine := montecarlo.NewEngine(montecarlo.Config{Tolerance: cfg.Simulation.Tolerance})
	rng := ports.NewSeededRNG()
	reports := excel.NewReportWriter(cfg.Report.OutputDir)

	cleanup := func() {}
	var store ports.ResultStore
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewResultRepository(db)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, nil, err
		}
		store = repo
		cleanup = func() { db.Close() }
	}

	return app.NewSimulationService(engine, rng, store, reports), cleanup, nil
}

func printResult(result *app.SimulationResult) {
	out := result.Output
	fmt.Printf("Scenario:  %s (run %s)\n", result.Scenario, result.RunID)
	fmt.Printf("Trials:    %d  Seed: %d  Runtime: %dms\n", out.Trials, out.Seed, result.RuntimeMs)
	fmt.Printf("Duration:  p10=%.1f p50=%.1f p80=%.1f p90=%.1f mean=%.1f\n",
		out.Duration.P10, out.Duration.P50, out.Duration.P80, out.Duration.P90, out.Duration.Mean)
	fmt.Println("Top critical activities:")
	printed := 0
	for _, a := range out.Activities {
		if a.Criticality == 0 {
			continue
		}
		fmt.Printf("  %-12s criticality=%5.1f%%  sensitivity=%+.2f\n", a.ActivityID, a.Criticality, a.Sensitivity)
		printed++
		if printed == 10 {
			break
		}
	}
	if result.ReportPath != "" {
		fmt.Printf("Report:    %s\n", result.ReportPath)
	}
}
