package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nadzzz/shelfd/internal/client"
)

var errNotReady = errors.New("mediator is not ready")

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether a running mediator has warmed up and accepts queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(a.cfg.Client)
			if err != nil {
				return err
			}
			defer c.Close()

			ready, err := c.Ready(cmd.Context())
			if err != nil {
				return fmt.Errorf("mediator %s unreachable: %w", a.cfg.Client.Addr(), err)
			}
			if !ready {
				return fmt.Errorf("%s: %w", a.cfg.Client.Addr(), errNotReady)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s ready (%s)\n", a.cfg.Client.Addr(), a.cfg.Client.Transport)
			return err
		},
	}
}
