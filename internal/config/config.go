// Package config loads the plugin parameters for both generation engines.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of plugins.yaml.
type Config struct {
	Dungeon DungeonConfig `yaml:"dungeon"`
	Task    TaskConfig    `yaml:"task"`
	Storage StorageConfig `yaml:"storage"`
	Bridge  BridgeConfig  `yaml:"bridge"`
}

// DungeonConfig holds maze dungeon parameters.
type DungeonConfig struct {
	// Width and Height are measured in maze cells, not tiles.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// TTL is how long a generated layout is reused for the same map.
	TTL Duration `yaml:"ttl"`

	// FreeZone is the marker value written to the walkable layer.
	FreeZone int `yaml:"free_zone"`

	// TransferCode identifies the event that is moved onto the spawn tile.
	TransferCode int `yaml:"transfer_code"`
}

// TaskConfig holds quest generation parameters.
type TaskConfig struct {
	Levels        []string `yaml:"levels"`
	Credits       []int    `yaml:"credits"`
	Types         []string `yaml:"types"`
	NameTemplates []string `yaml:"name_templates"`
	MapMark       string   `yaml:"map_mark"`
	NamesFile     string   `yaml:"names_file"`
	UpRateMax     float64  `yaml:"up_rate_max"`

	MaxPartyLevel  float64 `yaml:"max_party_level"`
	LevelDamp      float64 `yaml:"level_damp"`
	LevelScope     float64 `yaml:"level_scope"`
	TypeDamp       float64 `yaml:"type_damp"`
	TypeScope      float64 `yaml:"type_scope"`
	MaxNameRetries int     `yaml:"max_name_retries"`

	// TroopID is the troop fought by spawned quest enemies.
	TroopID int `yaml:"troop_id"`
}

// StorageConfig selects the save-slot database.
type StorageConfig struct {
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// BridgeConfig holds the host-runtime WebSocket endpoint settings.
type BridgeConfig struct {
	Address string `yaml:"address"`

	// AllowedOrigins empty means same-origin only; "*" allows all.
	AllowedOrigins []string `yaml:"allowed_origins"`

	MaxMessageSize int64 `yaml:"max_message_size"`

	// Connection caps; zero disables a cap.
	MaxConnections int `yaml:"max_connections"`
	MaxPerIP       int `yaml:"max_per_ip"`
}

// Duration unmarshals Go duration strings such as "1h" or "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// DefaultConfig returns the stock plugin parameters.
func DefaultConfig() *Config {
	return &Config{
		Dungeon: DungeonConfig{
			Width:        10,
			Height:       10,
			TTL:          Duration{time.Hour},
			FreeZone:     1,
			TransferCode: 201,
		},
		Task: TaskConfig{
			Levels:  []string{"G", "F", "E", "D", "C", "B", "A", "S"},
			Credits: []int{100, 500, 3000, 20000, 150000, 1200000, 10000000, 99999999},
			Types:   []string{"find", "beat", "contact"},
			NameTemplates: []string{
				"[${level}]go to ${map} ${type} ${target}",
				"[${level}]explore ${map}",
				"[${level}]${type} the ${target}",
			},
			MapMark:        "$",
			NamesFile:      "Names",
			UpRateMax:      1.3,
			MaxPartyLevel:  100,
			LevelDamp:      8,
			LevelScope:     0.83,
			TypeDamp:       0,
			TypeScope:      1.8,
			MaxNameRetries: 32,
			TroopID:        10,
		},
		Storage: StorageConfig{
			Driver:     "sqlite",
			SQLitePath: "data/saves.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Bridge: BridgeConfig{
			Address:        ":4480",
			AllowedOrigins: []string{},
			MaxMessageSize: 64 * 1024,
			MaxConnections: 16,
			MaxPerIP:       4,
		},
	}
}

// Load reads path over the defaults, applies DRPG_* environment overrides
// and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DRPG_DB_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("DRPG_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("DRPG_BRIDGE_ADDR"); v != "" {
		c.Bridge.Address = v
	}
}
