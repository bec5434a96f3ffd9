package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/sig-0/go-custody/event"
)

func newEventsCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "events <file>",
		Short: "Print an event stream written by simulate --events-out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open events file: %w", err)
			}
			defer func() { _ = f.Close() }()

			logs, err := event.Import(f)
			if err != nil {
				return err
			}

			var filter event.Filter

			if address != "" {
				addr, err := parseAddress(address)
				if err != nil {
					return err
				}

				filter.Addresses = append(filter.Addresses, addr)
			}

			out := cmd.OutOrStdout()

			for _, log := range logs {
				if !filter.Match(log) {
					continue
				}

				fmt.Fprintf(out, "#%d %s topics=%d data=%s\n", log.BlockNumber, log.Address, len(log.Topics), hexutil.Encode(log.Data))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "only print events of this contract")

	return cmd
}
