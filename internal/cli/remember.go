package cli

import (
	"time"

	"github.com/mczabca-boop/tinyclaw/pkg/memory"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "remember",
		Short: "Persist a completed exchange",
		Long:  "Writes one user/assistant exchange into the agent's turn history so future enrichment can retrieve it.",
		Run:   runRemember,
	}

	cmd.Flags().StringP("agent", "a", "default", "Agent identifier")
	cmd.Flags().String("name", "", "Agent display name")
	cmd.Flags().StringP("channel", "c", "cli", "Channel identifier")
	cmd.Flags().StringP("sender", "s", "", "Sender identifier")
	cmd.Flags().String("message-id", "", "Message id (default: generated)")
	cmd.Flags().StringP("user", "u", "", "User message text")
	cmd.Flags().String("assistant", "", "Assistant response text")

	RootCmd.AddCommand(cmd)
}

func runRemember(cmd *cobra.Command, args []string) {
	agent, _ := cmd.Flags().GetString("agent")
	name, _ := cmd.Flags().GetString("name")
	channel, _ := cmd.Flags().GetString("channel")
	sender, _ := cmd.Flags().GetString("sender")
	messageID, _ := cmd.Flags().GetString("message-id")
	user, _ := cmd.Flags().GetString("user")
	assistant, _ := cmd.Flags().GetString("assistant")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	engine, log := newEngine(cfg)
	defer log.Close()

	engine.PersistTurn(memory.Turn{
		AgentID:   agent,
		AgentName: name,
		Channel:   channel,
		Sender:    sender,
		MessageID: messageID,
		UserText:  user,
		Assistant: assistant,
		Timestamp: time.Now(),
	})
}
