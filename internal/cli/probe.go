package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Report search backend status",
		Run:   runProbe,
	}

	RootCmd.AddCommand(cmd)
}

func runProbe(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	engine, log := newEngine(cfg)
	defer log.Close()

	path, ok := engine.Probe(cmd.Context(), cfg.Memory.BackendPath)
	if !ok {
		fmt.Println("backend: not found")
		return
	}
	fmt.Printf("backend: %s\n", path)
	fmt.Printf("no-expand capability: %v\n", engine.SupportsNoExpand(path))
}
