package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/cardscan/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Anomaly.MinTransactions)
	assert.Equal(t, 20, cfg.Anomaly.MLMinTransactions)
	assert.InDelta(t, 0.1, cfg.Anomaly.Contamination, 1e-9)
	assert.InDelta(t, 0.1999, cfg.Finance.DefaultAPR, 1e-9)
	assert.True(t, cfg.Categories.EnableNLP)
	assert.NotContains(t, cfg.Database.Path, "~")
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
anomaly:
  min_transactions: 5
finance:
  reward_type: miles
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Anomaly.MinTransactions)
	assert.Equal(t, "miles", cfg.Finance.RewardType)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "contamination too high", key: "anomaly.contamination", value: 0.9},
		{name: "no trees", key: "anomaly.trees", value: 0},
		{name: "unknown reward type", key: "finance.reward_type", value: "crypto"},
		{name: "negative apr", key: "finance.default_apr", value: -1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, filepath.Join(home, "data.db"), ExpandPath("~/data.db"))
	t.Setenv("CARDSCAN_TEST_DIR", "/tmp/cards")
	assert.Equal(t, "/tmp/cards/x.db", ExpandPath("$CARDSCAN_TEST_DIR/x.db"))
}

func TestExpandPathLeavesOtherTildesAlone(t *testing.T) {
	assert.Equal(t, "~alice/data.db", ExpandPath("~alice/data.db"))
	assert.Equal(t, "/srv/~/x.db", ExpandPath("/srv/~/x.db"))
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg-test")
	t.Setenv("XDG_DATA_HOME", "/var/xdg-data")

	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, "/etc/xdg-test/cardscan", dir)

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "/var/xdg-data/cardscan/cardscan.db", cfg.Database.Path)
}
