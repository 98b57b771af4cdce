package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/secmon-lab/stormfront/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdHistory() *cli.Command {
	var appCfg appConfig

	return &cli.Command{
		Name:  "history",
		Usage: "Print captured prompts and final outputs",
		Flags: appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.build(ctx, c)
			if err != nil {
				return err
			}
			defer app.Close()

			entries, err := app.uc.History(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(os.Stdout, usecase.RenderHistory(entries))
			return err
		},
	}
}
