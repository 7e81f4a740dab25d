//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/mixcritic/internal/profile"
)

func profilesCommand() *cli.Command {
	return &cli.Command{
		Name:  "profiles",
		Usage: "List the built-in genre references",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			formatter, err := format.GetFormatter(cmd.String("format"))
			if err != nil {
				return err
			}

			genres := profile.Genres()
			data := make([]*format.Data, 0, len(genres))

			for _, genre := range genres {
				prof, err := profile.Builtin(genre)
				if err != nil {
					return err
				}

				meta := map[string]any{
					"metrics": len(prof.Metrics),
					"bands":   len(prof.Bands),
				}

				if target := prof.Metrics["integratedLoudness"].Target; target != nil {
					meta["loudness"] = fmt.Sprintf("%.1f LUFS", *target)
				}

				if target := prof.Metrics["dynamicRange"].Target; target != nil {
					meta["dynamic_range"] = fmt.Sprintf("DR%.0f", *target)
				}

				data = append(data, &format.Data{Object: genre, Meta: meta})
			}

			return formatter.PrintAll(data, os.Stdout)
		},
	}
}
