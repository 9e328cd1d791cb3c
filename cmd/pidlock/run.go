package main

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		file  string
		flags lockFlags
	)
	cmd := &cobra.Command{
		Use:   "run --file PIDFILE -- COMMAND [ARGS...]",
		Short: "run a command while holding the lock",
		Long: "Run acquires the lock, runs the command and releases the lock when it exits.\n" +
			"It exits with status 75 without running the command when another live process holds the lock.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := root.logger()
			if err != nil {
				return err
			}
			l, err := flags.newFileLock(file, log)
			if err != nil {
				return err
			}

			return l.Do(func() error {
				child := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
				child.Stdin = os.Stdin
				child.Stdout = cmd.OutOrStdout()
				child.Stderr = cmd.ErrOrStderr()
				return child.Run()
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "PID file guarding the command")
	_ = cmd.MarkFlagRequired("file")
	flags.register(cmd)
	return cmd
}
