package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds every setting the migrator needs. It is built once at
// startup and passed by reference into the components that need it; nothing
// mutates it after Load returns.
type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Legacy stores (read-only).
	MySQLDSN string `mapstructure:"MYSQL_DSN"`
	MongoURI string `mapstructure:"MONGO_URI"`
	MongoDB  string `mapstructure:"MONGO_DATABASE"`

	// Target stores, one database per domain schema.
	RegistrationDatabaseURL string `mapstructure:"REGISTRATION_DATABASE_URL"`
	PharmacyDatabaseURL     string `mapstructure:"PHARMACY_DATABASE_URL"`
	OPDDatabaseURL          string `mapstructure:"OPD_DATABASE_URL"`
	InventoryDatabaseURL    string `mapstructure:"INVENTORY_DATABASE_URL"`

	DBMaxConns int32 `mapstructure:"DB_MAX_CONNS"`
	DBMinConns int32 `mapstructure:"DB_MIN_CONNS"`

	OrganizationID string `mapstructure:"ORGANIZATION_ID"`
	HospitalID     string `mapstructure:"HOSPITAL_ID"`

	// PageSize bounds each source fetch during paginated flows.
	PageSize int `mapstructure:"PAGE_SIZE"`

	// AuthTokenSecret guards the HTTP trigger endpoints. Empty disables the
	// guard, which is only acceptable in development.
	AuthTokenSecret string `mapstructure:"AUTH_TOKEN_SECRET"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "6969")
	v.SetDefault("ENV", "development")
	v.SetDefault("MONGO_DATABASE", "hms_legacy")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("PAGE_SIZE", 1000)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV",
		"MYSQL_DSN", "MONGO_URI", "MONGO_DATABASE",
		"REGISTRATION_DATABASE_URL", "PHARMACY_DATABASE_URL",
		"OPD_DATABASE_URL", "INVENTORY_DATABASE_URL",
		"DB_MAX_CONNS", "DB_MIN_CONNS",
		"ORGANIZATION_ID", "HOSPITAL_ID",
		"PAGE_SIZE", "AUTH_TOKEN_SECRET",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run with. Connection
// strings for the legacy source and at least the registration target are
// required; organization and hospital identifiers must be UUIDs because they
// are written verbatim into every target row.
func (c *Config) Validate() error {
	if c.MySQLDSN == "" {
		return fmt.Errorf("MYSQL_DSN is required")
	}
	if c.RegistrationDatabaseURL == "" {
		return fmt.Errorf("REGISTRATION_DATABASE_URL is required")
	}
	for name, val := range map[string]string{
		"ORGANIZATION_ID": c.OrganizationID,
		"HOSPITAL_ID":     c.HospitalID,
	} {
		if val == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := uuid.Parse(val); err != nil {
			return fmt.Errorf("%s must be a UUID: %w", name, err)
		}
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if !c.IsDev() && strings.TrimSpace(c.AuthTokenSecret) == "" {
		return fmt.Errorf("AUTH_TOKEN_SECRET is required outside development")
	}
	return nil
}

// TargetURL returns the database URL configured for the named flow domain,
// falling back to the registration database when a dedicated one is not set.
func (c *Config) TargetURL(domain string) string {
	var url string
	switch domain {
	case "pharmacy":
		url = c.PharmacyDatabaseURL
	case "opd":
		url = c.OPDDatabaseURL
	case "inventory":
		url = c.InventoryDatabaseURL
	default:
		url = c.RegistrationDatabaseURL
	}
	if url == "" {
		url = c.RegistrationDatabaseURL
	}
	return url
}
