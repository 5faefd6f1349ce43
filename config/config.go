package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigGoroutines  = "goroutines"
	ConfigDuration    = "duration"
	ConfigGameLogPath = "game-log-path"
	ConfigRecordsDir  = "records-dir"
	ConfigSeed        = "seed"
	ConfigAddr        = "addr"
	ConfigAgentURL    = "agent-url"
	ConfigProfileDir  = "profile-dir"
	ConfigVerbose     = "verbose"
	ConfigDebug       = "debug"
)

// Config layers command line flags over AI2048_* environment variables over
// defaults.
type Config struct {
	*viper.Viper
	args []string
}

func (c *Config) Load(args []string) error {
	c.Viper = viper.New()

	fs := pflag.NewFlagSet("ai2048", pflag.ContinueOnError)
	fs.Int(ConfigGoroutines, 1, "goroutines evaluating root moves in parallel")
	fs.Duration(ConfigDuration, 5*time.Minute, "time budget for playing games back to back")
	fs.String(ConfigGameLogPath, "game_log.csv", "CSV file finished games are appended to")
	fs.String(ConfigRecordsDir, "", "directory for per-move search records (disabled when empty)")
	fs.Uint64(ConfigSeed, 0, "random seed for tile spawns (0 picks a random seed)")
	fs.String(ConfigAddr, ":8080", "listen address of the agent server")
	fs.String(ConfigAgentURL, "", "play with a remote agent server instead of a local search")
	fs.String(ConfigProfileDir, "", "write a CPU profile of the bench command to this directory")
	fs.Bool(ConfigVerbose, false, "print the board after every move")
	fs.Bool(ConfigDebug, false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("ai2048")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	return nil
}

// Args returns the positional arguments left after the flags.
func (c *Config) Args() []string {
	return c.args
}
