package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/L3nn0x/rose-tools/pkg/zms"
)

func objCmd() *cli.Command {
	return &cli.Command{
		Name:      "obj",
		Usage:     "Convert a ZMS model to Wavefront OBJ",
		ArgsUsage: "<input.zms>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: input with .obj extension)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			input, err := requireInput(cmd)
			if err != nil {
				return err
			}

			model, err := zms.ReadFile(input)
			if err != nil {
				return err
			}

			out := outputPath(cmd, input, ".obj")
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()

			w := bufio.NewWriter(f)
			if err := writeObj(w, model); err != nil {
				return fmt.Errorf("write obj: %w", err)
			}
			return w.Flush()
		},
	}
}

// writeObj emits the model as OBJ text. The V texture coordinate is
// flipped: OBJ puts the origin at the bottom left.
func writeObj(w *bufio.Writer, m *zms.Model) error {
	if _, err := fmt.Fprintf(w, "# Exported by roseconv\n"); err != nil {
		return err
	}

	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(w, "v %g %g %g\n", v.Position.X, v.Position.Y, v.Position.Z); err != nil {
			return err
		}
	}
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(w, "vt %g %g\n", v.UV1.X, 1.0-v.UV1.Y); err != nil {
			return err
		}
	}
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(w, "vn %g %g %g\n", v.Normal.X, v.Normal.Y, v.Normal.Z); err != nil {
			return err
		}
	}

	// OBJ indices are one-based.
	for _, i := range m.Indices {
		x, y, z := i.X+1, i.Y+1, i.Z+1
		if _, err := fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", x, x, x, y, y, y, z, z, z); err != nil {
			return err
		}
	}

	return nil
}
