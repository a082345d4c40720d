package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"trackpad/internal/autostart"
)

func newAutostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Start the gesture server at login",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Start the server at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := autostart.Enable(); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "autostart enabled")
				return err
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop starting the server at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := autostart.Disable(); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "autostart disabled")
				return err
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether the server starts at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				state := "disabled"
				if autostart.IsEnabled() {
					state = "enabled"
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "autostart %s\n", state)
				return err
			},
		},
	)
	return cmd
}
