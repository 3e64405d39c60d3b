package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/autosend/internal/chain"
	"github.com/Mohsinsiddi/autosend/internal/config"
	"github.com/Mohsinsiddi/autosend/internal/logger"
	"github.com/Mohsinsiddi/autosend/internal/metrics"
	"github.com/Mohsinsiddi/autosend/internal/rpc"
	"github.com/Mohsinsiddi/autosend/internal/transfer"
	"github.com/Mohsinsiddi/autosend/internal/ui"
	"github.com/Mohsinsiddi/autosend/internal/wallet"
)

// openKeystore is swapped in tests.
var openKeystore = func() wallet.KeystoreBackend { return wallet.DefaultKeystore() }

const pushTimeout = 5 * time.Second

var (
	sendTUI          bool
	sendStrictSender bool
	sendYes          bool
	sendSeed         int64
	sendTimeout      time.Duration
	sendGasLimit     uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one random transfer to an allow-listed recipient",
	Example: `  autosend send
  autosend send --yes=false --tui
  autosend send --seed 42 --timeout 5m`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	log := logger.Log

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		seed := sendSeed
		cfg.RandSeed = &seed
	}
	if sendTimeout > 0 {
		cfg.ConfirmTimeout = sendTimeout
	}
	if sendGasLimit > 0 {
		cfg.GasLimit = sendGasLimit
	}

	secret, err := resolveSecret(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ui.Header(Version))

	rec := metrics.New()
	defer pushMetrics(ctx, log, rec, cfg.PushgatewayURL)

	endpoint, err := selectEndpoint(ctx, out, cfg)
	if err != nil {
		err = fmt.Errorf("%w: %w", transfer.ErrConnection, err)
		rec.Observe(nil, err)
		return err
	}

	client := chain.NewEVMClient(endpoint)
	defer client.Close()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var view waitView = newSpinnerView(out)
	if sendTUI {
		view = newTeaView(cmd.InOrStdin(), out)
	}

	p := &transfer.Pipeline{
		Node:           client,
		Rand:           randSource(cfg),
		Log:            log,
		PollInterval:   cfg.PollInterval,
		ConfirmTimeout: cfg.ConfirmTimeout,
		Hooks: transfer.Hooks{
			Confirm: func(res *transfer.Result) bool {
				printPreview(out, res)
				if sendYes {
					return true
				}
				return ui.Confirm(cmd.InOrStdin(), out, "Broadcast this transaction?")
			},
			Sent: func(pt *transfer.PendingTx) {
				hash := pt.Hash.Hex()
				fmt.Fprintln(out, ui.Success("Sent "+ui.Addr(hash)))
				link := chain.TxURL(pt.Tx.ChainId().Uint64(), hash)
				if link != "" {
					fmt.Fprintln(out, ui.Step("Explorer: "+ui.Addr(link)))
				}
				view.Start(hash, link, cancelRun)
			},
			Poll: func(attempt int) { view.Poll(attempt) },
		},
	}

	res, err := p.Run(runCtx, transfer.Params{
		SecretKey:    secret,
		Sender:       cfg.SenderAddress,
		Recipients:   cfg.Recipients,
		MinAmount:    cfg.MinAmountWei,
		MaxAmount:    cfg.MaxAmountWei,
		GasLimit:     cfg.GasLimit,
		StrictSender: sendStrictSender,
	})
	if res.Pending != nil {
		view.Finish(res.Outcome)
	}
	rec.Observe(res, err)

	if errors.Is(err, transfer.ErrAborted) {
		fmt.Fprintln(out, ui.Warn("Cancelled. Nothing was broadcast."))
		return nil
	}
	if err != nil {
		printFailure(out, res)
		return err
	}
	printOutcome(out, res)
	return nil
}

// resolveSecret returns PRIVATE_KEY, or the key stored under KEY_REF.
func resolveSecret(cfg *config.Config) (string, error) {
	if cfg.PrivateKey != "" {
		return cfg.PrivateKey, nil
	}
	key, err := openKeystore().Retrieve(cfg.KeyRef)
	if err != nil {
		return "", fmt.Errorf("%w: KEY_REF %s: %w", transfer.ErrInvalidKey, cfg.KeyRef, err)
	}
	return key, nil
}

// selectEndpoint benchmarks the configured endpoints when there are several
// and prints the probe table.
func selectEndpoint(ctx context.Context, out io.Writer, cfg *config.Config) (string, error) {
	if len(cfg.RPCEndpoints) == 1 {
		return cfg.RPCEndpoints[0], nil
	}
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return "", err
	}

	sp := ui.NewSpinner(out, fmt.Sprintf("Probing %d RPC endpoints...", len(cfg.RPCEndpoints)))
	sp.Start()
	selCtx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	best, endpoints, err := rpc.SelectBest(selCtx, cfg.RPCEndpoints, algo)
	cancel()
	sp.Stop()

	t := ui.NewTable([]ui.Column{
		{Title: "Endpoint", Width: 36},
		{Title: "Latency", Width: 10},
		{Title: "Block", Width: 12},
		{Title: "Status", Width: 16},
	})
	for _, ep := range endpoints {
		status, latency, block := "ok", ep.Latency.Round(time.Millisecond).String(), fmt.Sprintf("%d", ep.BlockNumber)
		if !ep.Healthy() {
			status, latency, block = "down", "-", "-"
		}
		if ep.URL == best && err == nil {
			status = "selected"
		}
		t.AddRow(ui.Row{redactURL(ep.URL), latency, block, status})
	}
	fmt.Fprint(out, t.Render())
	if err != nil {
		return "", err
	}
	fmt.Fprintln(out, ui.Step(fmt.Sprintf("Using %s (%s)", ui.Val(redactURL(best)), algo)))
	return best, nil
}

// redactURL keeps scheme and host; provider URLs often carry an API key in
// the path or query.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<redacted>"
	}
	return u.Scheme + "://" + u.Host
}

func randSource(cfg *config.Config) transfer.Source {
	if cfg.RandSeed != nil {
		return transfer.SeededSource(*cfg.RandSeed)
	}
	return transfer.CryptoSource()
}

func pushMetrics(ctx context.Context, log *zap.Logger, rec *metrics.Recorder, gateway string) {
	if gateway == "" {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := rec.Push(pctx, gateway); err != nil {
		log.Warn("metrics push failed", zap.String("gateway", redactURL(gateway)), zap.Error(err))
	}
}

// The send flags are registered on the root command too, which runs a send
// when no subcommand is given.
func init() {
	for _, f := range []*pflag.FlagSet{sendCmd.Flags(), rootCmd.Flags()} {
		f.BoolVar(&sendTUI, "tui", false, "full-screen view while waiting for the receipt")
		f.BoolVar(&sendStrictSender, "strict-sender", false, "fail when SENDER_ADDRESS does not match the key (otherwise it is ignored and the key address is used)")
		f.BoolVarP(&sendYes, "yes", "y", true, "broadcast without asking")
		f.Int64Var(&sendSeed, "seed", 0, "seed the recipient and amount draws (overrides RAND_SEED)")
		f.DurationVar(&sendTimeout, "timeout", 0, "confirmation timeout (overrides CONFIRM_TIMEOUT)")
		f.Uint64Var(&sendGasLimit, "gas-limit", 0, "gas limit (overrides GAS_LIMIT)")
	}
}
