package chain

import (
	"strconv"
	"strings"
)

// Network holds display metadata for a known EVM chain id.
type Network struct {
	Name           string
	ChainID        uint64
	NativeCurrency string
	Explorer       string
}

// knownNetworks lists the chains autosend can link an explorer for.
var knownNetworks = map[uint64]Network{
	1:        {Name: "Ethereum", ChainID: 1, NativeCurrency: "ETH", Explorer: "https://etherscan.io"},
	11155111: {Name: "Sepolia", ChainID: 11155111, NativeCurrency: "ETH", Explorer: "https://sepolia.etherscan.io"},
	17000:    {Name: "Holesky", ChainID: 17000, NativeCurrency: "ETH", Explorer: "https://holesky.etherscan.io"},
	8453:     {Name: "Base", ChainID: 8453, NativeCurrency: "ETH", Explorer: "https://basescan.org"},
	84532:    {Name: "Base Sepolia", ChainID: 84532, NativeCurrency: "ETH", Explorer: "https://sepolia.basescan.org"},
	10:       {Name: "Optimism", ChainID: 10, NativeCurrency: "ETH", Explorer: "https://optimistic.etherscan.io"},
	11155420: {Name: "OP Sepolia", ChainID: 11155420, NativeCurrency: "ETH", Explorer: "https://sepolia-optimism.etherscan.io"},
	42161:    {Name: "Arbitrum One", ChainID: 42161, NativeCurrency: "ETH", Explorer: "https://arbiscan.io"},
	421614:   {Name: "Arb Sepolia", ChainID: 421614, NativeCurrency: "ETH", Explorer: "https://sepolia.arbiscan.io"},
	137:      {Name: "Polygon", ChainID: 137, NativeCurrency: "POL", Explorer: "https://polygonscan.com"},
	80002:    {Name: "Amoy", ChainID: 80002, NativeCurrency: "POL", Explorer: "https://amoy.polygonscan.com"},
	56:       {Name: "BNB Chain", ChainID: 56, NativeCurrency: "BNB", Explorer: "https://bscscan.com"},
	97:       {Name: "BNB Testnet", ChainID: 97, NativeCurrency: "tBNB", Explorer: "https://testnet.bscscan.com"},
}

// LookupNetwork finds display metadata by chain id.
func LookupNetwork(chainID uint64) (Network, bool) {
	n, ok := knownNetworks[chainID]
	return n, ok
}

// NetworkName returns the chain's display name, or "chain <id>" when unknown.
func NetworkName(chainID uint64) string {
	if n, ok := knownNetworks[chainID]; ok {
		return n.Name
	}
	return "chain " + strconv.FormatUint(chainID, 10)
}

// TxURL returns the explorer link for a transaction hash, or "" when the
// chain has no registered explorer.
func TxURL(chainID uint64, hash string) string {
	n, ok := knownNetworks[chainID]
	if !ok || n.Explorer == "" {
		return ""
	}
	return strings.TrimSuffix(n.Explorer, "/") + "/tx/" + hash
}
