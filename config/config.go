// Package config loads a custody deployment from the environment
package config

import (
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-faster/errors"

	"github.com/sig-0/go-custody/governance"
)

type Config struct {
	App struct {
		LogLevel   string `env:"LOG_LEVEL" envDefault:"INFO"`
		EventsFile string `env:"EVENTS_FILE"`
	}
	Wallet struct {
		Owners    addressList `env:"OWNERS,required"`
		Threshold uint64      `env:"THRESHOLD" envDefault:"1"`
	}
	Timelock struct {
		Delay time.Duration `env:"DELAY" envDefault:"48h"`
		Admin address       `env:"ADMIN,required"`
	}
	Ledger struct {
		Operator      address `env:"OPERATOR,required"`
		TokenName     string  `env:"TOKEN_NAME" envDefault:"Custody Token"`
		TokenSymbol   string  `env:"TOKEN_SYMBOL" envDefault:"CTK"`
		InitialSupply uint64  `env:"INITIAL_SUPPLY" envDefault:"0"`
	}
}

type (
	address     common.Address
	addressList []common.Address
)

var parsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(address{}): func(v string) (interface{}, error) {
		a, err := parseAddress(v)

		return address(a), err
	},
	reflect.TypeOf(addressList{}): func(v string) (interface{}, error) {
		var list addressList

		for _, s := range strings.Split(v, ",") {
			a, err := parseAddress(s)
			if err != nil {
				return nil, err
			}

			list = append(list, a)
		}

		return list, nil
	},
}

func parseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid address %q", s)
	}

	return common.HexToAddress(s), nil
}

// Load parses the process environment
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom parses vars instead of the process environment
func LoadFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (Config, error) {
	var c Config
	if err := env.ParseWithFuncs(&c, parsers, opts); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}

	return c, nil
}

// Governance returns the deployment described by c
func (c Config) Governance() governance.Config {
	return governance.Config{
		Owners:        c.Wallet.Owners,
		Required:      c.Wallet.Threshold,
		Delay:         c.Timelock.Delay,
		Admin:         common.Address(c.Timelock.Admin),
		Operator:      common.Address(c.Ledger.Operator),
		TokenName:     c.Ledger.TokenName,
		TokenSymbol:   c.Ledger.TokenSymbol,
		InitialSupply: new(big.Int).SetUint64(c.Ledger.InitialSupply),
	}
}
