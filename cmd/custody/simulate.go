package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sig-0/go-custody/config"
	"github.com/sig-0/go-custody/event"
	"github.com/sig-0/go-custody/governance"
	"github.com/sig-0/go-custody/ledger"
	"github.com/sig-0/go-custody/timelock"
	"github.com/sig-0/go-custody/vm"
)

func newSimulateCmd() *cobra.Command {
	var (
		recipient string
		amount    string
		eventsOut string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Mint tokens through the wallet, the timelock and the ledger",
		Long: `Deploy the configured system and mint tokens through it.

The first THRESHOLD owners queue the mint on the timelock, the clock is
advanced past the delay and the same owners execute it.

Examples:
  custody simulate --amount 1000
  custody simulate --amount 0.5 --recipient 0x... --events-out events.bin`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}

			if eventsOut == "" {
				eventsOut = c.App.EventsFile
			}

			log, err := newLogger(c.App.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			units, err := ledger.ParseUnits(amount)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}

			cfg := c.Governance()

			to := cfg.Operator
			if recipient != "" {
				if to, err = parseAddress(recipient); err != nil {
					return err
				}
			}

			var (
				store = event.NewStore()
				reg   = prometheus.NewRegistry()
				v     = vm.New(vm.WithLogger(log), vm.WithSink(store), vm.WithMetrics(reg))
			)

			sys, err := governance.Deploy(v, cfg.Admin, cfg, governance.WithLogger(log))
			if err != nil {
				return err
			}

			if err := simulateMint(sys, cfg, to, units); err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "balance of %s: %s %s\n", to, ledger.FormatUnits(sys.Ledger.BalanceOf(to)), sys.Ledger.Symbol())

			if err := printEvents(out, store.Logs(event.Filter{}), sys.Decode); err != nil {
				return err
			}

			if err := printMetrics(out, reg); err != nil {
				return err
			}

			if eventsOut == "" {
				return nil
			}

			return writeEvents(eventsOut, store.Logs(event.Filter{}), log)
		},
	}

	cmd.Flags().StringVar(&recipient, "recipient", "", "mint recipient (default the ledger operator)")
	cmd.Flags().StringVar(&amount, "amount", "1", "amount of tokens to mint")
	cmd.Flags().StringVar(&eventsOut, "events-out", "", "write the emitted events to this file")

	return cmd
}

// simulateMint runs a mint through both wallet rounds, advancing the clock in between
func simulateMint(sys *governance.System, cfg governance.Config, to common.Address, units *big.Int) error {
	owners := make([]*governance.Session, 0, cfg.Required)
	for _, owner := range cfg.Owners[:cfg.Required] {
		owners = append(owners, sys.Session(owner))
	}

	op := sys.LedgerOperation("mint", sys.EarliestETA(), to, units)

	approve := func(propose func(timelock.Operation) (uint64, error)) error {
		index, err := propose(op)
		if err != nil {
			return err
		}

		for _, s := range owners[1:] {
			if err := s.Approve(index); err != nil {
				return err
			}
		}

		_, err = owners[len(owners)-1].Run(index)

		return err
	}

	if err := approve(owners[0].ProposeQueue); err != nil {
		return fmt.Errorf("queue mint: %w", err)
	}

	sys.VM.Advance(sys.Timelock.Delay() + time.Second)

	if err := approve(owners[0].ProposeExecute); err != nil {
		return fmt.Errorf("execute mint: %w", err)
	}

	return nil
}

type decoder func(*types.Log) (string, string, map[string]any, error)

func printEvents(w io.Writer, logs []*types.Log, decode decoder) error {
	for _, log := range logs {
		contract, name, fields, err := decode(log)
		if err != nil {
			return fmt.Errorf("decode log %d: %w", log.Index, err)
		}

		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		fmt.Fprintf(w, "#%d %s.%s", log.BlockNumber, contract, name)

		for _, k := range keys {
			fmt.Fprintf(w, " %s=%v", k, fields[k])
		}

		fmt.Fprintln(w)
	}

	return nil
}

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s%s %v\n", mf.GetName(), labels(m.GetLabel()), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "%s_count %d\n", mf.GetName(), m.GetHistogram().GetSampleCount())
			}
		}
	}

	return nil
}

type labelPair interface {
	GetName() string
	GetValue() string
}

func labels[L labelPair](pairs []L) string {
	if len(pairs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}

	return "{" + strings.Join(parts, ",") + "}"
}

func writeEvents(path string, logs []*types.Log, log *zap.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create events file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := event.Export(f, logs); err != nil {
		return err
	}

	log.Info("events exported", zap.String("path", path), zap.Int("count", len(logs)))

	return nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}

	return common.HexToAddress(s), nil
}
