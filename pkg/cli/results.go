package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdResults() *cli.Command {
	var appCfg appConfig

	return &cli.Command{
		Name:      "results",
		Usage:     "List stored run artifacts, or print one by run ID",
		ArgsUsage: "[RUN_ID]",
		Flags:     appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.build(ctx, c)
			if err != nil {
				return err
			}
			defer app.Close()

			if c.Args().Len() == 0 {
				ids, err := app.uc.Results(ctx)
				if err != nil {
					return err
				}
				for _, id := range ids {
					if _, err := fmt.Fprintln(os.Stdout, id); err != nil {
						return err
					}
				}
				return nil
			}

			result, err := app.uc.Result(ctx, model.RunID(c.Args().First()))
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal result artifact")
			}
			_, err = fmt.Fprintln(os.Stdout, string(data))
			return err
		},
	}
}
