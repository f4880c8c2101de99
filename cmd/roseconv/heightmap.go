package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/chewxy/math32"
	"github.com/urfave/cli/v3"

	"github.com/L3nn0x/rose-tools/pkg/him"
)

func heightmapCmd() *cli.Command {
	return &cli.Command{
		Name:      "heightmap",
		Usage:     "Render a HIM heightmap as a 16-bit grayscale PNG",
		ArgsUsage: "<input.him>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: input with .png extension)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			input, err := requireInput(cmd)
			if err != nil {
				return err
			}

			h, err := him.ReadFile(input)
			if err != nil {
				return err
			}

			out := outputPath(cmd, input, ".png")
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer f.Close()

			if err := png.Encode(f, renderHeightmap(h)); err != nil {
				return fmt.Errorf("encode png: %w", err)
			}
			return nil
		},
	}
}

// renderHeightmap maps samples linearly from [min, max] onto the full
// 16-bit gray range. A flat tile renders black.
func renderHeightmap(h *him.Heightmap) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, int(h.Width), int(h.Height)))
	span := h.MaxHeight - h.MinHeight
	for y, row := range h.Heights {
		for x, sample := range row {
			var v uint16
			if span > 0 && !math32.IsNaN(sample) {
				v = uint16((sample - h.MinHeight) / span * 65535)
			}
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	return img
}
