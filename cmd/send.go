package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trackpad/internal/network"
	"trackpad/internal/protocol"
)

func newSendCmd() *cobra.Command {
	var (
		addr     string
		useWS    bool
		gap      time.Duration
		wait     time.Duration
		discPort int
	)

	cmd := &cobra.Command{
		Use:   "send <gesture>...",
		Short: "Send gestures to a server, like the phone client does",
		Long: "Send one or more gestures. Gestures are named " + gestureNames() + ".\n" +
			"Without --addr the first server found on the LAN is used.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := parseGestures(args)
			if err != nil {
				return err
			}

			transport := network.TransportTCP
			if useWS {
				transport = network.TransportWebSocket
				if addr == "" {
					return errors.New("--ws needs --addr pointing at the API port")
				}
			}

			if addr == "" {
				found := make(chan network.DiscoveredHost, 1)
				if _, err := discover(cmd.Context(), discPort, wait, found); err != nil {
					return err
				}
				select {
				case h := <-found:
					addr = h.Address()
					fmt.Fprintf(cmd.ErrOrStderr(), "using %s at %s\n", h.Name, addr)
				default:
					return fmt.Errorf("no server announced itself within %s", wait)
				}
			}

			return sendGestures(cmd.Context(), transport, addr, tokens, gap)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "server address host:port (default: discover)")
	cmd.Flags().BoolVar(&useWS, "ws", false, "send over the API WebSocket instead of TCP")
	cmd.Flags().DurationVar(&gap, "gap", 350*time.Millisecond, "pause between gestures, longer than the server cool-down")
	cmd.Flags().DurationVar(&wait, "discover-timeout", 3*time.Second, "how long to wait for an announcement")
	cmd.Flags().IntVar(&discPort, "discovery-port", protocol.DefaultDiscoveryPort, "UDP discovery port")
	return cmd
}

func parseGestures(args []string) ([]protocol.Token, error) {
	tokens := make([]protocol.Token, 0, len(args))
	for _, a := range args {
		tok, ok := protocol.TokenByName(a)
		if !ok {
			return nil, fmt.Errorf("unknown gesture %q, expected one of %s", a, gestureNames())
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func gestureNames() string {
	var names []string
	for _, tok := range protocol.Tokens() {
		names = append(names, strings.ReplaceAll(tok.String(), "_", "-"))
	}
	return strings.Join(names, ", ")
}

// sendGestures writes each token as its own write, pausing gap in between
// so two gestures never share one read on the server.
func sendGestures(ctx context.Context, transport network.Transport, addr string, tokens []protocol.Token, gap time.Duration) error {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := network.Dial(dialCtx, transport, addr)
	if err != nil {
		return err
	}
	defer c.Close()

	for i, tok := range tokens {
		if i > 0 {
			select {
			case <-time.After(gap):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := c.Send(tok); err != nil {
			return fmt.Errorf("send %s: %w", tok, err)
		}
	}
	return nil
}
