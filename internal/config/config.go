// ABOUTME: Configuration loader for the benchmark harness
// ABOUTME: Loads settings from environment variables, optionally seeded from a .env file

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Solver bridge
	SolverCmd        string
	SolverArgs       []string
	SolveTimeout     time.Duration // per bridge call, 0 = no limit
	ACSolver         string        // reference AC OPF solver (default: ipopt)
	LPSolver         string        // linear model solver (default: gurobi)
	PersistentSolver string        // lazy variant solver (default: gurobi_persistent)

	// Paths
	CaseDir     string // PGLib-OPF .m or parsed .json cases
	SolutionDir string // per-case result artifacts
	SummaryDir  string // data/ CSVs and figures/ PNGs

	// Demand sweep
	InitMin     float64 // lowest multiplier tried (default: 0.9)
	InitMax     float64 // highest multiplier tried (default: 1.1)
	SearchSteps int     // feasibility search candidates per side (default: 10)
	SweepSteps  int     // sweep intervals, steps+1 points (default: 20)

	// Reporting
	ReadConcurrency int // parallel artifact decodes (default: 8)
}

// SolverConfigured returns true if a bridge executable is set
func (c *Config) SolverConfigured() bool {
	return c.SolverCmd != ""
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. An empty path loads ./.env when present.
func LoadEnvFile(path string) error {
	if path == "" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{
		SolverCmd:        os.Getenv("OPFBENCH_SOLVER_CMD"),
		SolverArgs:       getEnvFields("OPFBENCH_SOLVER_ARGS"),
		SolveTimeout:     time.Duration(getEnvInt("OPFBENCH_SOLVE_TIMEOUT", 0)) * time.Second,
		ACSolver:         getEnv("OPFBENCH_AC_SOLVER", "ipopt"),
		LPSolver:         getEnv("OPFBENCH_LP_SOLVER", "gurobi"),
		PersistentSolver: getEnv("OPFBENCH_PERSISTENT_SOLVER", "gurobi_persistent"),

		CaseDir:     getEnv("OPFBENCH_CASE_DIR", "download/pglib-opf-master"),
		SolutionDir: getEnv("OPFBENCH_SOLUTION_DIR", "transmission_test_instances/approximation_solution_files"),
		SummaryDir:  getEnv("OPFBENCH_SUMMARY_DIR", "transmission_test_instances/approximation_summary_files"),

		InitMin:     getEnvFloat("OPFBENCH_INIT_MIN", 0.9),
		InitMax:     getEnvFloat("OPFBENCH_INIT_MAX", 1.1),
		SearchSteps: getEnvInt("OPFBENCH_SEARCH_STEPS", 10),
		SweepSteps:  getEnvInt("OPFBENCH_SWEEP_STEPS", 20),

		ReadConcurrency: getEnvInt("OPFBENCH_READ_CONCURRENCY", 8),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	// a bound of exactly 1 leaves the feasibility search nothing to step through
	if c.InitMin <= 0 || c.InitMin >= 1 {
		return fmt.Errorf("OPFBENCH_INIT_MIN must be in (0, 1), got %v", c.InitMin)
	}
	if c.InitMax <= 1 {
		return fmt.Errorf("OPFBENCH_INIT_MAX must be above 1, got %v", c.InitMax)
	}

	for _, s := range []struct {
		name  string
		value int
	}{
		{"OPFBENCH_SEARCH_STEPS", c.SearchSteps},
		{"OPFBENCH_SWEEP_STEPS", c.SweepSteps},
	} {
		if s.value < 1 || s.value > 1000 {
			return fmt.Errorf("%s must be between 1 and 1000, got %d", s.name, s.value)
		}
	}

	if c.ReadConcurrency < 1 || c.ReadConcurrency > 256 {
		return fmt.Errorf("OPFBENCH_READ_CONCURRENCY must be between 1 and 256, got %d", c.ReadConcurrency)
	}
	if c.SolveTimeout < 0 {
		return fmt.Errorf("OPFBENCH_SOLVE_TIMEOUT must not be negative, got %s", c.SolveTimeout)
	}
	for _, s := range []struct {
		name  string
		value string
	}{
		{"OPFBENCH_AC_SOLVER", c.ACSolver},
		{"OPFBENCH_LP_SOLVER", c.LPSolver},
		{"OPFBENCH_PERSISTENT_SOLVER", c.PersistentSolver},
	} {
		if strings.TrimSpace(s.value) == "" {
			return fmt.Errorf("%s must not be blank", s.name)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvFields splits on whitespace, e.g. "-m opfbridge"
func getEnvFields(key string) []string {
	fields := strings.Fields(os.Getenv(key))
	if len(fields) == 0 {
		return nil
	}
	return fields
}
