package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/autosend/internal/config"
	"github.com/Mohsinsiddi/autosend/internal/logger"
	"github.com/Mohsinsiddi/autosend/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/autosend/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	envFile string
	verbose bool
)

// rootCmd is the top-level command. Running it with no subcommand performs
// a send.
var rootCmd = &cobra.Command{
	Use:   "autosend",
	Short: "Send one random native-token transfer and wait for it",
	Long: `autosend picks a recipient from an allow-list and a random amount in a
configured range, signs one legacy transfer and waits for its receipt.

Configuration comes from the environment, optionally loaded from a dotenv
file (default .env). Variables already set in the environment win.

  RPC_ENDPOINT     JSON-RPC URL, or a comma-separated list to benchmark
  PRIVATE_KEY      hex signing key, or KEY_REF=autosend.<name> (see "key import")
  SENDER_ADDRESS   address expected to match the key. Balance and nonce are
                   always read for the key's address; a different
                   SENDER_ADDRESS is ignored with a warning (--strict-sender
                   fails instead)
  RECIPIENTS       comma-separated allow-list
  MIN_AMOUNT_ETH / MAX_AMOUNT_ETH, GAS_LIMIT, CONFIRM_TIMEOUT, POLL_INTERVAL
  RPC_ALGORITHM, RAND_SEED, PUSHGATEWAY_URL, APP_ENV`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" {
			return nil
		}
		if err := config.LoadEnvFile(envFile); err != nil {
			return err
		}
		return logger.Init(config.AppEnv(), verbose)
	},
	RunE: runSend,
}

// Execute runs the CLI and returns the process exit code. SIGINT and
// SIGTERM cancel the run context.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), ui.Err(err.Error()))
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default: .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		sendCmd,
		keyCmd,
		versionCmd,
	)
}
