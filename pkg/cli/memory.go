package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/secmon-lab/stormfront/pkg/service/compressor"
	"github.com/secmon-lab/stormfront/pkg/usecase"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMemory() *cli.Command {
	return &cli.Command{
		Name:  "memory",
		Usage: "Inspect or reset rolling context memory",
		Commands: []*cli.Command{
			cmdMemoryShow(),
			cmdMemoryWipe(),
			cmdMemoryDigest(),
		},
	}
}

func cmdMemoryShow() *cli.Command {
	var appCfg appConfig

	return &cli.Command{
		Name:  "show",
		Usage: "Print the rendered memory context",
		Flags: appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.build(ctx, c)
			if err != nil {
				return err
			}
			defer app.Close()

			text, err := app.uc.MemoryContext(ctx)
			if err != nil {
				return err
			}
			if text == "" {
				logging.Default().Info("memory is empty")
				return nil
			}
			_, err = fmt.Fprintln(os.Stdout, text)
			return err
		},
	}
}

func cmdMemoryWipe() *cli.Command {
	var appCfg appConfig

	return &cli.Command{
		Name:  "wipe",
		Usage: "Erase summary blocks and recent history",
		Flags: appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := appCfg.build(ctx, c)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.uc.WipeMemory(ctx); err != nil {
				return err
			}
			logging.Default().Info("memory wiped")
			return nil
		},
	}
}

func cmdMemoryDigest() *cli.Command {
	var appCfg appConfig

	return &cli.Command{
		Name:      "digest",
		Usage:     "Compress the continuous-context transcript file",
		ArgsUsage: "[FILE]",
		Flags:     appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			settings, err := appCfg.storm.Configure(c)
			if err != nil {
				return err
			}

			path := settings.Memory.ContinuousContextFile
			if c.Args().Len() > 0 {
				path = c.Args().First()
			}

			engine := compressor.NewSemanticCompressor(compressor.WithRenderMode(settings.Memory.RenderMode))
			text, err := usecase.Digest(ctx, path, engine, settings.Memory.ContextWindowMax)
			if err != nil {
				return err
			}
			if text == "" {
				logging.Default().Info("transcript is empty", "path", path)
				return nil
			}
			_, err = fmt.Fprintln(os.Stdout, text)
			return err
		},
	}
}
