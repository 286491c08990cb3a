package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"fairtable-server/internal/util"
)

// Config provides configuration for the fair table server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	} `yaml:"jwt"`
	Log struct {
		Level             string `yaml:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	Round struct {
		RetryAttempts  int `yaml:"retryAttempts" envconfig:"retry_attempts"`
		RetryBackoffMS int `yaml:"retryBackoffMs" envconfig:"retry_backoff_ms"`
		// RetentionDays is how long a revealed round stays verifiable
		RetentionDays int `yaml:"retentionDays" envconfig:"retention_days"`
	} `yaml:"round"`
	Verify struct {
		WaitMS      int `yaml:"waitMs" envconfig:"wait_ms"`
		Concurrency int `yaml:"concurrency"`
	} `yaml:"verify"`
	Blackjack struct {
		Decks              int  `yaml:"decks"`
		HitSoft17          bool `yaml:"hitSoft17" envconfig:"hit_soft_17"`
		MaxSplits          int  `yaml:"maxSplits" envconfig:"max_splits"`
		MaxHandsPerSeat    int  `yaml:"maxHandsPerSeat" envconfig:"max_hands_per_seat"`
		MinWager           int  `yaml:"minWager" envconfig:"min_wager"`
		MaxWager           int  `yaml:"maxWager" envconfig:"max_wager"`
		DoubleAfterSplit   bool `yaml:"doubleAfterSplit" envconfig:"double_after_split"`
		BlackjackPaysNum   int  `yaml:"blackjackPaysNum" envconfig:"blackjack_pays_num"`
		BlackjackPaysDenom int  `yaml:"blackjackPaysDenom" envconfig:"blackjack_pays_denom"`
	} `yaml:"blackjack"`
}

var config Config

// DefaultConfig returns the configuration used when nothing else is provided
func DefaultConfig() Config {
	var c Config
	c.PGDSN = "postgres://postgres@localhost:5432/postgres?sslmode=disable"
	c.MigrationsPath = "./sql"
	c.JWT.PublicKey = ".jwt/public.pem"
	c.JWT.PrivateKey = ".jwt/private.key"
	c.Log.Level = "info"
	c.Round.RetryAttempts = 3
	c.Round.RetryBackoffMS = 250
	c.Round.RetentionDays = 90
	c.Verify.WaitMS = 1000
	c.Verify.Concurrency = 8
	c.Blackjack.Decks = 1
	c.Blackjack.MaxSplits = 3
	c.Blackjack.MaxHandsPerSeat = 3
	c.Blackjack.MinWager = 1
	c.Blackjack.MaxWager = 500
	c.Blackjack.DoubleAfterSplit = true
	c.Blackjack.BlackjackPaysNum = 3
	c.Blackjack.BlackjackPaysDenom = 2
	return c
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// Values come from the defaults, then the YAML file, then the environment.
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("FT_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	case os.IsNotExist(err):
		logrus.WithField("file", configFile).Debug("config file not found, using defaults")
	default:
		return err
	}

	if err := envconfig.Process("ft", &cfg); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}
