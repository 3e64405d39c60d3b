package config

import (
	"math/big"
	"time"
)

// Config holds everything one autosend run needs.
type Config struct {
	RPCEndpoints  []string
	PrivateKey    string // never logged
	KeyRef        string // keychain reference, used when PrivateKey is empty
	SenderAddress string
	Recipients    []string

	MinAmountWei *big.Int
	MaxAmountWei *big.Int
	GasLimit     uint64

	ConfirmTimeout time.Duration
	PollInterval   time.Duration

	RPCAlgorithm   string // "fastest" | "failover"
	RandSeed       *int64 // nil means crypto randomness
	PushgatewayURL string
	AppEnv         string // "development" | "production"
}

// rawConfig is the shape viper decodes into before amounts and the seed
// are parsed.
type rawConfig struct {
	RPCEndpoint    []string      `mapstructure:"rpc_endpoint"`
	PrivateKey     string        `mapstructure:"private_key"`
	KeyRef         string        `mapstructure:"key_ref"`
	SenderAddress  string        `mapstructure:"sender_address"`
	Recipients     []string      `mapstructure:"recipients"`
	MinAmountETH   string        `mapstructure:"min_amount_eth"`
	MaxAmountETH   string        `mapstructure:"max_amount_eth"`
	GasLimit       uint64        `mapstructure:"gas_limit"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RPCAlgorithm   string        `mapstructure:"rpc_algorithm"`
	RandSeed       string        `mapstructure:"rand_seed"`
	PushgatewayURL string        `mapstructure:"pushgateway_url"`
	AppEnv         string        `mapstructure:"app_env"`
}
