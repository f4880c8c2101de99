package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/L3nn0x/rose-tools/pkg/him"
	"github.com/L3nn0x/rose-tools/pkg/lit"
	"github.com/L3nn0x/rose-tools/pkg/vfs"
	"github.com/L3nn0x/rose-tools/pkg/zms"
)

func jsonCmd() *cli.Command {
	return &cli.Command{
		Name:      "json",
		Usage:     "Decode an asset file and dump the record as JSON",
		ArgsUsage: "<input.{zms,idx,him,lit}>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			input, err := requireInput(cmd)
			if err != nil {
				return err
			}

			record, err := decodeByExtension(input)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal json: %w", err)
			}
			_, err = fmt.Fprintf(os.Stdout, "%s\n", out)
			return err
		},
	}
}

func decodeByExtension(path string) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zms":
		return zms.ReadFile(path)
	case ".idx":
		return vfs.ReadFile(path)
	case ".him":
		return him.ReadFile(path)
	case ".lit":
		return lit.ReadFile(path)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", path)
	}
}
