package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ingmarrr/ws-chat/internal/client"
)

func clientCmd() *cobra.Command {
	var (
		addr    string
		name    string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Join a chat server from the terminal",
		Long: `Connects to a ws-chat server, joins under --name and sends each line of
standard input as a message. Ctrl+C or end of input leaves the room.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return client.Run(ctx, client.Options{
				URL:   addr,
				Name:  name,
				In:    os.Stdin,
				Out:   color.Output,
				Color: !noColor && !color.NoColor,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "ws://localhost:3001/ws", "WebSocket address")
	cmd.Flags().StringVar(&name, "name", "", "name to join as")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
