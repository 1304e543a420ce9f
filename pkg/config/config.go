// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/David-Botos/content-migrate/pkg/geo"
	"github.com/David-Botos/content-migrate/pkg/model"
)

// Store backends
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config represents the application configuration
type Config struct {
	// Input files
	DumpDir   string
	DumpFiles map[model.EntityType]string
	UsersFile string
	Entities  []model.EntityType // entity types to migrate, in order

	// Record store
	StoreBackend string
	Postgres     *PostgresConfig
	SQLite       *SQLiteConfig

	// Migration settings
	DryRun              bool
	DefaultAuthorEmail  string
	CategoryMappingFile string

	// Geo cleanup
	GeoStrict    bool
	GeoHomeBox   geo.BoundingBox
	GeoBadRegion geo.BoundingBox

	// Logging
	LogLevel  string
	LogFormat string
}

// dumpFileEnv names the variable overriding each entity's dump file
var dumpFileEnv = map[model.EntityType]string{
	model.EntityTip:        "DUMP_TIP_FILE",
	model.EntityArticle:    "DUMP_ARTICLE_FILE",
	model.EntityInitiative: "DUMP_INITIATIVE_FILE",
	model.EntityActor:      "DUMP_ACTOR_FILE",
	model.EntityForumPost:  "DUMP_FORUM_POST_FILE",
}

// LoadEnvFiles loads variables from .env files without overriding the
// environment. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dumpDir := getEnv("DUMP_DIR", "./dumps")

	cfg := &Config{
		DumpDir:             dumpDir,
		DumpFiles:           make(map[model.EntityType]string, len(dumpFileEnv)),
		UsersFile:           getEnv("USERS_FILE", filepath.Join(dumpDir, "users.json")),
		StoreBackend:        strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		DryRun:              getEnvAsBool("DRY_RUN", false),
		DefaultAuthorEmail:  getEnv("DEFAULT_AUTHOR_EMAIL", ""),
		CategoryMappingFile: getEnv("CATEGORY_MAPPING_FILE", ""),
		GeoStrict:           getEnvAsBool("GEO_STRICT", false),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", "console")),
	}

	for _, entity := range model.AllEntityTypes() {
		cfg.DumpFiles[entity] = getEnv(dumpFileEnv[entity], filepath.Join(dumpDir, string(entity)+".sql"))
	}

	for _, name := range getEnvAsStringSlice("MIGRATE_ENTITIES", nil) {
		entity, err := model.ParseEntityType(name)
		if err != nil {
			return nil, fmt.Errorf("MIGRATE_ENTITIES: %w", err)
		}
		cfg.Entities = append(cfg.Entities, entity)
	}
	if len(cfg.Entities) == 0 {
		cfg.Entities = model.AllEntityTypes()
	}

	var err error
	if cfg.GeoHomeBox, err = getEnvAsBoundingBox("GEO_HOME_BOX", geo.MetropolitanFrance); err != nil {
		return nil, err
	}
	if cfg.GeoBadRegion, err = getEnvAsBoundingBox("GEO_BAD_REGION", geo.EastAfrica); err != nil {
		return nil, err
	}

	// Load database configuration for the selected backend only
	switch cfg.StoreBackend {
	case BackendPostgres:
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	case BackendSQLite:
		cfg.SQLite = LoadSQLiteConfig()
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres:
		if c.Postgres == nil {
			return errors.New("postgreSQL configuration is required for the postgres backend")
		}
		if c.Postgres.Driver != DriverPgx && c.Postgres.Driver != DriverPq {
			return fmt.Errorf("unsupported postgres driver %q (want %s or %s)", c.Postgres.Driver, DriverPgx, DriverPq)
		}
	case BackendSQLite:
		if c.SQLite == nil || c.SQLite.Path == "" {
			return errors.New("sqlite path is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}

	if len(c.Entities) == 0 {
		return errors.New("at least one entity type must be selected")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}

	return nil
}

// DumpFile returns the dump path for an entity type
func (c *Config) DumpFile(entity model.EntityType) string {
	if path, ok := c.DumpFiles[entity]; ok {
		return path
	}
	return filepath.Join(c.DumpDir, string(entity)+".sql")
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBoundingBox(key string, defaultValue geo.BoundingBox) (geo.BoundingBox, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}

	box, err := geo.ParseBoundingBox(valueStr)
	if err != nil {
		return geo.BoundingBox{}, fmt.Errorf("%s: %w", key, err)
	}
	return box, nil
}

// Helper function to parse string slice from environment
func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
