package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"trackpad/internal/network"
	"trackpad/internal/protocol"
)

func newDiscoverCmd() *cobra.Command {
	var (
		duration time.Duration
		port     int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Listen for gesture servers announcing themselves on the LAN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hosts, err := discover(cmd.Context(), port, duration, nil)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(hosts)
			}
			return printHosts(cmd.OutOrStdout(), hosts)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "how long to listen")
	cmd.Flags().IntVar(&port, "port", protocol.DefaultDiscoveryPort, "UDP discovery port")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print hosts as JSON")
	return cmd
}

// discover listens for announcements for up to d. When first is non-nil
// it returns as soon as one host is seen.
func discover(ctx context.Context, port int, d time.Duration, first chan<- network.DiscoveredHost) ([]network.DiscoveredHost, error) {
	w := network.NewWatcher(port, slog.Default())
	if err := w.Listen(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	if first != nil {
		w.OnDiscover = func(h network.DiscoveredHost) {
			select {
			case first <- h:
			default:
			}
			cancel()
		}
	}

	if err := w.Run(ctx); err != nil {
		return nil, err
	}
	return w.Hosts(), nil
}

func printHosts(out io.Writer, hosts []network.DiscoveredHost) error {
	if len(hosts) == 0 {
		_, err := fmt.Fprintln(out, "no servers found")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tADDRESS\tLAST SEEN")
	for _, h := range hosts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Name, h.Address(), h.LastSeen.Format(time.TimeOnly))
	}
	return tw.Flush()
}
