package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Mohsinsiddi/autosend/internal/chain"
)

// DefaultEnvFile is read when no env file is given. Its absence is not an error.
const DefaultEnvFile = ".env"

var (
	// ErrMissing is returned when a required key has no value.
	ErrMissing = errors.New("missing configuration")
	// ErrInvalid is returned when a key holds a value that cannot be parsed.
	ErrInvalid = errors.New("invalid configuration")
)

// Load reads the dotenv file, then resolves every key from the environment
// with defaults applied. Variables already in the environment win over the
// file. An empty envFile means DefaultEnvFile, which may be absent.
func Load(envFile string) (*Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	return FromEnv()
}

// FromEnv resolves a Config from the process environment only.
func FromEnv() (*Config, error) {
	return FromViper(newViper())
}

// LoadEnvFile exports the variables of a dotenv file into the process
// environment without overriding existing ones. An empty path means
// DefaultEnvFile, which may be absent.
func LoadEnvFile(path string) error {
	optional := path == ""
	if optional {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && optional {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	// The first env name listed for a key takes precedence.
	_ = v.BindEnv("rpc_endpoint", "RPC_ENDPOINT", "SEPOLIA_RPC_URL")
	for _, key := range []string{
		"private_key", "key_ref", "sender_address", "recipients",
		"min_amount_eth", "max_amount_eth", "gas_limit",
		"confirm_timeout", "poll_interval", "rpc_algorithm",
		"rand_seed", "pushgateway_url", "app_env",
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("recipients", DefaultRecipients)
	v.SetDefault("min_amount_eth", DefaultMinAmountETH)
	v.SetDefault("max_amount_eth", DefaultMaxAmountETH)
	v.SetDefault("gas_limit", DefaultGasLimit)
	v.SetDefault("confirm_timeout", DefaultConfirmTimeout)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("rpc_algorithm", AlgorithmFastest)
	v.SetDefault("app_env", EnvDevelopment)
}

// FromViper decodes and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	cfg := &Config{
		RPCEndpoints:   splitList(raw.RPCEndpoint),
		PrivateKey:     strings.TrimSpace(raw.PrivateKey),
		KeyRef:         strings.TrimSpace(raw.KeyRef),
		SenderAddress:  strings.TrimSpace(raw.SenderAddress),
		Recipients:     splitList(raw.Recipients),
		GasLimit:       raw.GasLimit,
		ConfirmTimeout: raw.ConfirmTimeout,
		PollInterval:   raw.PollInterval,
		RPCAlgorithm:   strings.ToLower(strings.TrimSpace(raw.RPCAlgorithm)),
		PushgatewayURL: strings.TrimSpace(raw.PushgatewayURL),
		AppEnv:         strings.ToLower(strings.TrimSpace(raw.AppEnv)),
	}

	if len(cfg.RPCEndpoints) == 0 {
		return nil, fmt.Errorf("%w: RPC_ENDPOINT must be set", ErrMissing)
	}
	if cfg.PrivateKey == "" && cfg.KeyRef == "" {
		return nil, fmt.Errorf("%w: PRIVATE_KEY or KEY_REF must be set", ErrMissing)
	}
	if cfg.SenderAddress == "" {
		return nil, fmt.Errorf("%w: SENDER_ADDRESS must be set", ErrMissing)
	}
	if len(cfg.Recipients) == 0 {
		return nil, fmt.Errorf("%w: RECIPIENTS is empty", ErrMissing)
	}

	var err error
	if cfg.MinAmountWei, err = parseAmount("MIN_AMOUNT_ETH", raw.MinAmountETH); err != nil {
		return nil, err
	}
	if cfg.MaxAmountWei, err = parseAmount("MAX_AMOUNT_ETH", raw.MaxAmountETH); err != nil {
		return nil, err
	}
	if cfg.GasLimit == 0 {
		return nil, fmt.Errorf("%w: GAS_LIMIT must be positive", ErrInvalid)
	}
	if cfg.ConfirmTimeout <= 0 || cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("%w: CONFIRM_TIMEOUT and POLL_INTERVAL must be positive", ErrInvalid)
	}
	if !slices.Contains([]string{AlgorithmFastest, AlgorithmFailover}, cfg.RPCAlgorithm) {
		return nil, fmt.Errorf("%w: RPC_ALGORITHM %q (want fastest or failover)", ErrInvalid, raw.RPCAlgorithm)
	}
	if seed := strings.TrimSpace(raw.RandSeed); seed != "" {
		n, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: RAND_SEED %q is not an integer", ErrInvalid, seed)
		}
		cfg.RandSeed = &n
	}
	return cfg, nil
}

// AppEnv returns APP_ENV with its default applied, for code that needs the
// environment before a full Config can be loaded.
func AppEnv() string {
	return strings.ToLower(strings.TrimSpace(newViper().GetString("app_env")))
}

// Production reports whether logs should use the production encoder.
func (c *Config) Production() bool {
	return c.AppEnv == EnvProduction
}

func parseAmount(key, s string) (*big.Int, error) {
	wei, err := chain.ParseEther(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	return wei, nil
}

// splitList trims entries and drops empty ones, so "a, b," yields [a b].
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
