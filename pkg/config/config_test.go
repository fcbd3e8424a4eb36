package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	conf := LoadConfig()
	require.NotNil(t, conf)
	assert.Empty(t, conf.Aliases)

	path, err := GetConfigFilePath(configFile)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err, "default config file should have been written")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	LoadConfig()
	require.NoError(t, SaveConfig(&Config{Aliases: map[string][]string{"break": {"bp"}}}))

	conf := LoadConfig()
	assert.Equal(t, []string{"bp"}, conf.Aliases["break"])
}
