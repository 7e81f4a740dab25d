//nolint:wrapcheck
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/farcloser/mixcritic"
	"github.com/farcloser/mixcritic/internal/profile"
)

const defaultGenre = "pop"

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "genre",
			Aliases: []string{"g"},
			Usage:   "Built-in genre reference (see the profiles command)",
			Value:   defaultGenre,
		},
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "Path to a YAML genre reference, overrides --genre",
		},
		&cli.StringFlag{
			Name:    "stage",
			Aliases: []string{"S"},
			Usage:   "What is being reviewed, adjusting heuristics and rules: mix, master",
			Value:   "mix",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a YAML engine configuration applied over the stage preset",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: console, json, markdown",
			Value:   "console",
		},
	}
}

// engine is the reference and configuration selected on the command line.
type engine struct {
	profile *profile.Profile
	config  mixcritic.EngineConfig
}

func loadEngine(cmd *cli.Command) (*engine, error) {
	stage, err := mixcritic.ParseStage(cmd.String("stage"))
	if err != nil {
		return nil, err
	}

	config := mixcritic.ConfigForStage(stage)

	if path := cmd.String("config"); path != "" {
		config, err = mixcritic.LoadConfigFile(path, config)
		if err != nil {
			return nil, err
		}
	}

	var prof *profile.Profile

	if path := cmd.String("profile"); path != "" {
		prof, err = profile.LoadFile(path)
	} else {
		prof, err = profile.Builtin(cmd.String("genre"))
	}

	if err != nil {
		return nil, err
	}

	return &engine{profile: prof, config: config}, nil
}
