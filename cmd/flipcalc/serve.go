package main

import (
	"errors"

	"github.com/rgehrsitz/flipcalc/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the viability API over HTTP",
		Long: `Serve the viability, break-even, sensitivity and report endpoints over HTTP.

Analysis reports and parameter updates need a backend (backend.url); the
stateless endpoints work without one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := c.settings.Server
			if addr != "" {
				settings.Addr = addr
			}

			var be server.Backend
			client, err := c.backend(cmd.Context())
			switch {
			case err == nil:
				be = client
			case errors.Is(err, errNoBackend):
				c.logger.Warn("starting without a backend; analysis endpoints are disabled",
					zap.String("op", "cli.serve"))
			default:
				return err
			}

			return server.New(c.engine(), be, settings, c.logger).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
