package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

func cmdAsk() *cli.Command {
	var appCfg appConfig
	var asJSON bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print run metadata and final output as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:      "ask",
		Aliases:   []string{"a"},
		Usage:     "Ask a prompt with rolling memory context and commit the answer",
		ArgsUsage: "PROMPT...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			prompt, err := promptArg(c)
			if err != nil {
				return err
			}

			app, err := appCfg.build(ctx, c)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.uc.Ask(ctx, prompt)
			if err != nil {
				return err
			}
			committed := res.Committed
			return renderRun(os.Stdout, res.Run, &committed, asJSON)
		},
	}
}
