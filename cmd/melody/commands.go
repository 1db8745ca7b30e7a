package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

func getCommands() []*cli.Command {
	cmds := []*cli.Command{}
	for _, name := range serviceNames {
		cmds = append(cmds, serviceCommand(name))
	}
	cmds = append(cmds, &cli.Command{
		Name:  "worker",
		Usage: "Consume platform events and project them into notifications",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "failure-policy",
				Usage: "What to do with a delivery the handler rejects: ack, requeue or dead-letter",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runWorker(ctx, cmd.String("config"), cmd.String("failure-policy"))
		},
	})
	return cmds
}

func serviceCommand(name string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "Start the " + name + " HTTP service",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  "port",
				Usage: "Override http.port",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runService(ctx, name, cmd.String("config"), uint16(cmd.Uint("port")))
		},
	}
}
