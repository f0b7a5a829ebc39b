package server

import (
	"context"
	"fmt"

	"github.com/mwantia/screener/internal/agent"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	config "github.com/mwantia/screener/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the Screener API agent",
		Long: `Start the Screener API agent.

The agent fetches the record set once, serves the explorer as a JSON API
and exposes Prometheus metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			return agent.NewAgent(cfg).Serve(context.Background())
		},
	}

	cmd.Flags().String("address", "", "address the API listens on (overrides http.address)")
	viper.BindPFlag("http.address", cmd.Flags().Lookup("address"))

	return cmd
}
