package governance

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-faster/errors"
	"go.uber.org/multierr"

	"github.com/sig-0/go-custody/timelock"
)

var ErrInvalidConfig = errors.New("invalid governance config")

// Config describes the three contracts of a custody deployment
type Config struct {
	// Owners and Required configure the quorum wallet
	Owners   []common.Address
	Required uint64

	// Delay is the minimum time between queuing and execution
	Delay time.Duration
	// Admin may cancel queued operations and administers timelock roles
	Admin common.Address

	// Operator holds the operational ledger roles and the initial supply
	Operator      common.Address
	TokenName     string
	TokenSymbol   string
	InitialSupply *big.Int
}

// IsValid returns every problem with cfg combined, matching ErrInvalidConfig
func (cfg Config) IsValid() error {
	var err error

	if len(cfg.Owners) == 0 {
		err = multierr.Append(err, errors.New("no wallet owners"))
	}

	if cfg.Required == 0 || cfg.Required > uint64(len(cfg.Owners)) {
		err = multierr.Append(err, errors.Errorf("threshold %d out of range for %d owners", cfg.Required, len(cfg.Owners)))
	}

	if cfg.Delay < timelock.MinDelay || cfg.Delay > timelock.MaxDelay {
		err = multierr.Append(err, errors.Errorf("delay %s outside [%s, %s]", cfg.Delay, timelock.MinDelay, timelock.MaxDelay))
	}

	if cfg.Admin == (common.Address{}) {
		err = multierr.Append(err, errors.New("zero timelock admin"))
	}

	if cfg.Operator == (common.Address{}) {
		err = multierr.Append(err, errors.New("zero ledger operator"))
	}

	if cfg.TokenSymbol == "" {
		err = multierr.Append(err, errors.New("empty token symbol"))
	}

	if cfg.InitialSupply != nil && cfg.InitialSupply.Sign() < 0 {
		err = multierr.Append(err, errors.New("negative initial supply"))
	}

	if err != nil {
		return multierr.Append(ErrInvalidConfig, err)
	}

	return nil
}
