// Package main provides roseconv, a command-line converter for ROSE Online
// asset files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "roseconv",
		Usage: "Convert ROSE Online asset files to common formats",
		Commands: []*cli.Command{
			objCmd(),
			gltfCmd(),
			jsonCmd(),
			heightmapCmd(),
			vfsCmd(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// outputPath returns the --out flag when set, otherwise the input path with
// its extension replaced.
func outputPath(cmd *cli.Command, input, ext string) string {
	if out := cmd.String("out"); out != "" {
		return out
	}
	return trimExt(input) + ext
}

func trimExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/' && path[i] != '\\'; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}

func requireInput(cmd *cli.Command) (string, error) {
	input := cmd.Args().First()
	if input == "" {
		return "", fmt.Errorf("input file is required")
	}
	return input, nil
}
