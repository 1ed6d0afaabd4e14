package config

import (
	"fmt"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/spf13/viper"
)

// Config holds the resolved application settings.
type Config struct {
	Logging    Logging
	Database   Database
	Categories Categories
	Anomaly    Anomaly
	Finance    Finance
	Reminders  Reminders
}

// Logging controls the slog handler.
type Logging struct {
	Level  string
	Format string
}

// Database locates the SQLite file holding custom rules and cards.
type Database struct {
	Path string
}

// Categories configures the categorizer.
type Categories struct {
	File      string // optional YAML category table
	EnableNLP bool
}

// Anomaly configures batch anomaly detection.
type Anomaly struct {
	MinTransactions   int
	MLMinTransactions int
	Contamination     float64
	Trees             int
}

// Finance configures the payoff and reward calculators.
type Finance struct {
	DefaultAPR float64
	RewardType string
}

// Reminders configures due-date lookahead.
type Reminders struct {
	DaysAhead int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", defaultDatabasePath())
	v.SetDefault("categories.file", "")
	v.SetDefault("categorizer.nlp", true)
	v.SetDefault("anomaly.min_transactions", 10)
	v.SetDefault("anomaly.ml_min_transactions", 20)
	v.SetDefault("anomaly.contamination", 0.1)
	v.SetDefault("anomaly.trees", 100)
	v.SetDefault("finance.default_apr", 0.1999)
	v.SetDefault("finance.reward_type", "cashback")
	v.SetDefault("reminders.days_ahead", 7)
}

// Load reads settings from v, applying defaults for anything unset.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Logging: Logging{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Database: Database{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Categories: Categories{
			File:      ExpandPath(v.GetString("categories.file")),
			EnableNLP: v.GetBool("categorizer.nlp"),
		},
		Anomaly: Anomaly{
			MinTransactions:   v.GetInt("anomaly.min_transactions"),
			MLMinTransactions: v.GetInt("anomaly.ml_min_transactions"),
			Contamination:     v.GetFloat64("anomaly.contamination"),
			Trees:             v.GetInt("anomaly.trees"),
		},
		Finance: Finance{
			DefaultAPR: v.GetFloat64("finance.default_apr"),
			RewardType: v.GetString("finance.reward_type"),
		},
		Reminders: Reminders{
			DaysAhead: v.GetInt("reminders.days_ahead"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.Anomaly.MinTransactions < 1 {
		return fmt.Errorf("%w: anomaly.min_transactions must be positive", common.ErrInvalidConfig)
	}
	if c.Anomaly.Contamination <= 0 || c.Anomaly.Contamination > 0.5 {
		return fmt.Errorf("%w: anomaly.contamination must be in (0, 0.5]", common.ErrInvalidConfig)
	}
	if c.Anomaly.Trees < 1 {
		return fmt.Errorf("%w: anomaly.trees must be positive", common.ErrInvalidConfig)
	}
	if c.Finance.DefaultAPR < 0 {
		return fmt.Errorf("%w: finance.default_apr cannot be negative", common.ErrInvalidConfig)
	}
	switch c.Finance.RewardType {
	case "cashback", "points", "miles":
	default:
		return fmt.Errorf("%w: finance.reward_type %q", common.ErrInvalidConfig, c.Finance.RewardType)
	}
	if c.Reminders.DaysAhead < 0 {
		return fmt.Errorf("%w: reminders.days_ahead cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
