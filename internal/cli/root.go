// Package cli implements the tinyclaw memory CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/mczabca-boop/tinyclaw/pkg/config"
	"github.com/mczabca-boop/tinyclaw/pkg/logger"
	"github.com/mczabca-boop/tinyclaw/pkg/memory"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dataDir    string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "tinyclaw",
	Short: "Conversation memory for tinyclaw agents",
	Long:  "Retrieves relevant excerpts from prior conversation turns and persists new turns for future retrieval.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.tinyclaw/config.json)")
	RootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Turn history directory (default: from config)")
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

func newEngine(cfg *config.Config) (*memory.Engine, *logger.Logger) {
	log, err := cfg.Log.CreateLogger()
	if err != nil {
		log = logger.NewDefaultLogger()
	}
	return memory.NewEngine(cfg.DataDir, log), log
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
