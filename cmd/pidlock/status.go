package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SystemBuilders/pidlock/internal/strategy"
)

func newStatusCmd(root *rootOptions) *cobra.Command {
	var (
		file  string
		flags lockFlags
	)
	cmd := &cobra.Command{
		Use:   "status --file PIDFILE",
		Short: "print the state of a lock and its owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := root.logger()
			if err != nil {
				return err
			}
			l, err := flags.newFileLock(file, log)
			if err != nil {
				return err
			}

			state := l.State()
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", state)
			if pid, ok := strategy.NewFile(file, log).ReadPID(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "owner: %d\n", pid)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "PID file to inspect")
	_ = cmd.MarkFlagRequired("file")
	flags.register(cmd)
	return cmd
}
