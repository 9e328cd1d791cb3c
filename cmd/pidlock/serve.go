package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SystemBuilders/pidlock/internal/lockservice"
	"github.com/SystemBuilders/pidlock/internal/node"
	"github.com/SystemBuilders/pidlock/internal/probe"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		dir, ip, port string
		flags         lockFlags
	)
	cmd := &cobra.Command{
		Use:   "serve --dir DIR",
		Short: "hold named locks on behalf of HTTP clients",
		Long: "Serve runs a node that acquires and releases PID locks in DIR over HTTP.\n" +
			"Locks are owned by the node and released when it shuts down.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := root.logger()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			ls := lockservice.NewSimpleLockService(log, dir, probe.NewSignal(log), flags.options(log)...)
			return node.Start(cmd.Context(), ls, *lockservice.NewSimpleConfig(ip, port), log)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the PID files")
	cmd.Flags().StringVar(&ip, "ip", "127.0.0.1", "address to listen on")
	cmd.Flags().StringVar(&port, "port", "61111", "port to listen on")
	_ = cmd.MarkFlagRequired("dir")
	flags.register(cmd)
	return cmd
}
