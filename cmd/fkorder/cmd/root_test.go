package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandStructure(t *testing.T) {
	assert.Equal(t, "fkorder", rootCmd.Use)

	for _, name := range []string{"sort", "truncate", "list-sets", "validate", "serve", "version"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		assert.True(t, found, "missing command %s", name)
	}

	flag := rootCmd.PersistentFlags().Lookup("config")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "fkorder.yaml", flag.DefValue)
		assert.Equal(t, "c", flag.Shorthand)
	}
}

func TestGetCLIOverrides(t *testing.T) {
	saved := []string{logLevel, logFormat, driver, dsn}
	defer func() {
		logLevel, logFormat, driver, dsn = saved[0], saved[1], saved[2], saved[3]
	}()

	logLevel, logFormat, driver, dsn = "debug", "json", "mysql", "app:secret@tcp(db:3306)/app"

	assert.Equal(t, CLIOverrides{
		LogLevel:  "debug",
		LogFormat: "json",
		Driver:    "mysql",
		DSN:       "app:secret@tcp(db:3306)/app",
	}, GetCLIOverrides())
}

func TestLoadConfig_AppliesOverrides(t *testing.T) {
	testFiles(t)
	driver = "mariadb"
	logLevel = "debug"

	cfg, err := loadConfig()
	if assert.NoError(t, err) {
		assert.Equal(t, "mysql", cfg.Database.Driver)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Len(t, cfg.TableSets, 3)
	}

	cfgFile = "nonexistent-config.yaml"
	_, err = loadConfig()
	assert.ErrorContains(t, err, "failed to load config")
}
