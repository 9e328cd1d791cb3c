package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SystemBuilders/pidlock/internal/lockclient"
	"github.com/SystemBuilders/pidlock/internal/lockservice"
)

func newRemoteCmd() *cobra.Command {
	var ip, port string
	client := func() *lockclient.SimpleClient {
		return lockclient.NewSimpleClient(lockservice.NewSimpleConfig(ip, port))
	}

	remote := &cobra.Command{
		Use:   "remote",
		Short: "talk to a running pidlock node",
	}
	remote.PersistentFlags().StringVar(&ip, "ip", "127.0.0.1", "node address")
	remote.PersistentFlags().StringVar(&port, "port", "61111", "node port")

	remote.AddCommand(
		&cobra.Command{
			Use:   "acquire ID",
			Short: "acquire a named lock on the node",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client().Acquire(lockservice.NewSimpleDescriptor(args[0]))
			},
		},
		&cobra.Command{
			Use:   "release ID",
			Short: "release a named lock held by the node",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client().Release(lockservice.NewSimpleDescriptor(args[0]))
			},
		},
		&cobra.Command{
			Use:   "state ID",
			Short: "print the state and owner of a named lock",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d := lockservice.NewSimpleDescriptor(args[0])
				state, err := client().State(d)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", state)

				owner, ok, err := client().CheckAcquired(d)
				if err != nil {
					return err
				}
				if ok && owner != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "owner: %s\n", owner)
				}
				return nil
			},
		},
	)
	return remote
}
