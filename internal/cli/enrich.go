package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "enrich [message]",
		Short: "Augment a message with relevant memory",
		Long:  "Prints the message with relevant excerpts from the agent's prior turns appended. With no argument the message is read from stdin.",
		Args:  cobra.ArbitraryArgs,
		Run:   runEnrich,
	}

	cmd.Flags().StringP("agent", "a", "default", "Agent identifier")
	cmd.Flags().StringP("channel", "c", "cli", "Channel identifier")

	RootCmd.AddCommand(cmd)
}

func runEnrich(cmd *cobra.Command, args []string) {
	agent, _ := cmd.Flags().GetString("agent")
	channel, _ := cmd.Flags().GetString("channel")

	message := strings.Join(args, " ")
	if message == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		message = strings.TrimSpace(string(data))
	}

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	engine, log := newEngine(cfg)
	defer log.Close()

	fmt.Println(engine.Enrich(cmd.Context(), agent, channel, message, cfg.Memory))
}
