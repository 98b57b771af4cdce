package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
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
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Run a single storm for a prompt without memory",
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

			result, err := app.uc.Storm.Run(ctx, prompt)
			if err != nil {
				return err
			}
			return renderRun(os.Stdout, result, nil, asJSON)
		},
	}
}
