package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"azdo-flow/internal/devops"
	"azdo-flow/internal/history"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// ErrMissingSetting is returned when a required setting has no value.
var ErrMissingSetting = errors.New("missing required setting")

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DevOps   devops.Config
	QueryID  string
	Workflow history.Workflow
	DataPath string
	HTTPAddr string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exeDir := ""
	if exePath, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return FromEnv(exeDir)
}

// FromEnv builds the configuration from the process environment only.
// exeDir is the fallback data directory; "" means the working directory.
func FromEnv(exeDir string) (*AppConfig, error) {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	rps, err := strconv.ParseFloat(getEnv("AZDO_REQUESTS_PER_SECOND", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid AZDO_REQUESTS_PER_SECOND %q", os.Getenv("AZDO_REQUESTS_PER_SECOND"))
	}
	timeoutSecs, err := strconv.Atoi(getEnv("AZDO_TIMEOUT_SECONDS", "60"))
	if err != nil || timeoutSecs <= 0 {
		return nil, fmt.Errorf("invalid AZDO_TIMEOUT_SECONDS %q", os.Getenv("AZDO_TIMEOUT_SECONDS"))
	}

	cfg := &AppConfig{
		DevOps: devops.Config{
			BaseURL:           getEnv("AZDO_BASE_URL", devops.DefaultBaseURL),
			Organization:      getEnv("AZDO_ORGANIZATION", ""),
			Project:           getEnv("AZDO_PROJECT", ""),
			Token:             getEnv("AZDO_PAT", ""),
			RequestsPerSecond: rps,
			Timeout:           time.Duration(timeoutSecs) * time.Second,
		},
		QueryID:  getEnv("AZDO_QUERY_ID", ""),
		DataPath: dataPath,
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	// Explicit variables win over values taken from the query link.
	if queryURL := getEnv("AZDO_QUERY_URL", ""); queryURL != "" {
		ref, err := devops.ParseQueryURL(queryURL)
		if err != nil {
			return nil, fmt.Errorf("AZDO_QUERY_URL: %w", err)
		}
		if cfg.DevOps.Organization == "" {
			cfg.DevOps.Organization = ref.Organization
		}
		if cfg.DevOps.Project == "" {
			cfg.DevOps.Project = ref.Project
		}
		if cfg.QueryID == "" {
			cfg.QueryID = ref.QueryID
		}
	}

	workflowFile := getEnv("WORKFLOW_FILE", filepath.Join(dataPath, "workflow.toml"))
	cfg.Workflow, err = LoadWorkflow(workflowFile)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// RequireDevOps reports which connection settings are still missing.
func (c *AppConfig) RequireDevOps() error {
	var missing []error
	if c.DevOps.Organization == "" {
		missing = append(missing, fmt.Errorf("%w: AZDO_ORGANIZATION", ErrMissingSetting))
	}
	if c.DevOps.Project == "" {
		missing = append(missing, fmt.Errorf("%w: AZDO_PROJECT", ErrMissingSetting))
	}
	if c.DevOps.Token == "" {
		missing = append(missing, fmt.Errorf("%w: AZDO_PAT", ErrMissingSetting))
	}
	return errors.Join(missing...)
}

// LoadWorkflow reads the workflow state names from a TOML file. A missing
// file yields the default workflow; keys left out of the file keep their defaults.
func LoadWorkflow(path string) (history.Workflow, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return history.DefaultWorkflow(), nil
	}
	if err != nil {
		return history.Workflow{}, fmt.Errorf("open workflow file: %w", err)
	}
	defer f.Close()

	var wf history.Workflow
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&wf); err != nil {
		return history.Workflow{}, fmt.Errorf("parse workflow file %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("Loaded workflow definition")
	return wf.WithDefaults(), nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
