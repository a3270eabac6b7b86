package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SIM_TRIALS", "")
	t.Setenv("SIM_SEED", "")
	t.Setenv("SIM_TOLERANCE", "")
	t.Setenv("SIM_CONCURRENCY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REPORT_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.DefaultTrials != 1000 {
		t.Errorf("DefaultTrials = %d, want 1000", cfg.Simulation.DefaultTrials)
	}
	if cfg.Simulation.DefaultSeed != 0 {
		t.Errorf("DefaultSeed = %d, want 0", cfg.Simulation.DefaultSeed)
	}
	if cfg.Database.URL != "" {
		t.Errorf("Database.URL = %q, want empty (persistence disabled)", cfg.Database.URL)
	}
	if cfg.Report.OutputDir != "." {
		t.Errorf("OutputDir = %q, want .", cfg.Report.OutputDir)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SIM_TRIALS", "5000")
	t.Setenv("SIM_SEED", "42")
	t.Setenv("SIM_TOLERANCE", "0.01")
	t.Setenv("SIM_CONCURRENCY", "4")
	t.Setenv("DATABASE_URL", "postgres://localhost/schedrisk")
	t.Setenv("REPORT_DIR", "/tmp/reports")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.DefaultTrials != 5000 {
		t.Errorf("DefaultTrials = %d, want 5000", cfg.Simulation.DefaultTrials)
	}
	if cfg.Simulation.DefaultSeed != 42 {
		t.Errorf("DefaultSeed = %d, want 42", cfg.Simulation.DefaultSeed)
	}
	if cfg.Simulation.Tolerance != 0.01 {
		t.Errorf("Tolerance = %g, want 0.01", cfg.Simulation.Tolerance)
	}
	if cfg.Simulation.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Simulation.Concurrency)
	}
	if cfg.Database.URL != "postgres://localhost/schedrisk" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"non-positive trials", "SIM_TRIALS", "0"},
		{"negative trials", "SIM_TRIALS", "-10"},
		{"negative tolerance", "SIM_TOLERANCE", "-0.5"},
		{"negative concurrency", "SIM_CONCURRENCY", "-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("SIM_TRIALS", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.DefaultTrials != 1000 {
		t.Errorf("DefaultTrials = %d, want default 1000 for unparseable value", cfg.Simulation.DefaultTrials)
	}
}
