package wallet

import (
	"errors"
	"fmt"
	"os"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

var ErrNoWallets = errors.New("wallet: keys file contains no wallets")

// Wallet is one executor in the pool. Index is its dense position in the
// keys file; the planner assigns tasks by index, so file order is stable
// identity across restarts.
type Wallet struct {
	Index      int    `json:"-" yaml:"-"`
	Address    string `json:"address" yaml:"address"`
	PrivateKey string `json:"private_key" yaml:"private_key"`
}

// LoadPool reads the wallet keys file (YAML or JSON; YAML is a superset).
func LoadPool(path string) ([]Wallet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: read keys file: %w", err)
	}

	var ws []Wallet
	if err := yaml.Unmarshal(b, &ws); err != nil {
		return nil, fmt.Errorf("wallet: parse keys file %s: %w", path, err)
	}
	if len(ws) == 0 {
		return nil, ErrNoWallets
	}
	for i := range ws {
		ws[i].Index = i
		if strings.TrimSpace(ws[i].Address) == "" {
			return nil, fmt.Errorf("wallet: entry %d: address is empty", i)
		}
		if strings.TrimSpace(ws[i].PrivateKey) == "" {
			return nil, fmt.Errorf("wallet: entry %d (%s): private_key is empty", i, ws[i].Address)
		}
	}
	return ws, nil
}

// Short returns an abbreviated address for logs.
func (w Wallet) Short() string {
	a := w.Address
	if len(a) <= 10 {
		return a
	}
	return a[:4] + ".." + a[len(a)-4:]
}
