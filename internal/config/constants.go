package config

import "time"

// Transfer defaults. Amounts are decimal ETH strings and are converted to
// wei exactly.
const (
	DefaultMinAmountETH = "0.0001"
	DefaultMaxAmountETH = "0.001"
	DefaultGasLimit     = uint64(21_000) // native transfer to an EOA
)

// Timeouts used by the send command.
const (
	RPCSelectTimeout      = 10 * time.Second // endpoint benchmark before the run
	DefaultConfirmTimeout = 3 * time.Minute  // receipt wait after broadcast
	DefaultPollInterval   = 500 * time.Millisecond
)

// RPC selection algorithms for multi-endpoint configs.
const (
	AlgorithmFastest  = "fastest"
	AlgorithmFailover = "failover"
)

// Application environments; production switches logs to JSON.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DefaultRecipients is the allow-list used when RECIPIENTS is unset.
var DefaultRecipients = []string{
	"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
	"0x1Db3439a222C519ab44bb1144fC28167b4Fa6EE6",
	"0x3fC91A3afd70395Cd496C647d5a6CC9D4B2b7FAD",
	"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
	"0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
}
