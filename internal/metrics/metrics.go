package metrics

import (
	"context"
	"errors"
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Mohsinsiddi/autosend/internal/transfer"
)

// Job is the pushgateway job name runs are grouped under.
const Job = "autosend"

// Recorder holds the metrics of a single run on a private registry. A run
// is short-lived, so the values are pushed rather than scraped.
type Recorder struct {
	registry       *prometheus.Registry
	transfersTotal *prometheus.CounterVec
	amountWei      prometheus.Gauge
	confirmSeconds prometheus.Histogram
}

func New() *Recorder {
	transfers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autosend_transfers_total",
		Help: "Transfer runs by outcome",
	}, []string{"outcome"})

	amount := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "autosend_transfer_amount_wei",
		Help: "Amount of the last transfer intent in wei",
	})

	confirm := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "autosend_confirmation_seconds",
		Help:    "Time from broadcast to receipt",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	r := prometheus.NewRegistry()
	r.MustRegister(transfers, amount, confirm)

	return &Recorder{
		registry:       r,
		transfersTotal: transfers,
		amountWei:      amount,
		confirmSeconds: confirm,
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records the result of a pipeline run.
func (r *Recorder) Observe(res *transfer.Result, err error) {
	r.transfersTotal.WithLabelValues(Outcome(res, err)).Inc()
	if res == nil {
		return
	}
	if res.Intent.Amount != nil {
		f, _ := new(big.Float).SetInt(res.Intent.Amount).Float64()
		r.amountWei.Set(f)
	}
	if res.Outcome.State == transfer.StateConfirmed {
		r.confirmSeconds.Observe(res.Outcome.Elapsed.Seconds())
	}
}

// Push sends the registry to a pushgateway, replacing the job's previous run.
func (r *Recorder) Push(ctx context.Context, url string) error {
	return push.New(url, Job).Gatherer(r.registry).PushContext(ctx)
}

// Outcome maps a run result to the label value of autosend_transfers_total.
func Outcome(res *transfer.Result, err error) string {
	if err != nil {
		for _, k := range errorLabels {
			if errors.Is(err, k.err) {
				return k.label
			}
		}
		return "error"
	}
	if res == nil {
		return "error"
	}
	switch {
	case res.Outcome.Succeeded():
		return "confirmed"
	case res.Outcome.State == transfer.StateConfirmed:
		return "reverted"
	default:
		return "unobserved"
	}
}

var errorLabels = []struct {
	err   error
	label string
}{
	{transfer.ErrConnection, "connection_error"},
	{transfer.ErrInvalidKey, "invalid_key"},
	{transfer.ErrAddressParse, "address_error"},
	{transfer.ErrSenderMismatch, "sender_mismatch"},
	{transfer.ErrRange, "range_error"},
	{transfer.ErrBalanceFetch, "balance_error"},
	{transfer.ErrInsufficientFunds, "insufficient_funds"},
	{transfer.ErrGasPriceFetch, "gas_price_error"},
	{transfer.ErrNonceFetch, "nonce_error"},
	{transfer.ErrAborted, "aborted"},
	{transfer.ErrBroadcast, "broadcast_error"},
}
