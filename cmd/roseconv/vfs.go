package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/L3nn0x/rose-tools/pkg/vfs"
)

func vfsCmd() *cli.Command {
	return &cli.Command{
		Name:  "vfs",
		Usage: "Inspect and unpack virtual file system indices",
		Commands: []*cli.Command{
			vfsListCmd(),
			vfsExtractCmd(),
		},
	}
}

func vfsListCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List the contents of a VFS index",
		ArgsUsage: "<index.idx>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			input, err := requireInput(cmd)
			if err != nil {
				return err
			}

			idx, err := vfs.ReadFile(input)
			if err != nil {
				return err
			}

			for _, fs := range idx.FileSystems {
				fmt.Printf("%s (%d files)\n", fs.Filename, len(fs.Files))
				for _, file := range fs.Files {
					flags := ""
					if file.IsDeleted {
						flags += " deleted"
					}
					if file.IsCompressed {
						flags += " compressed"
					}
					if file.IsEncrypted {
						flags += " encrypted"
					}
					fmt.Printf("  %s  %d bytes%s\n", file.Filepath, file.Size, flags)
				}
			}
			return nil
		},
	}
}

func vfsExtractCmd() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract raw file payloads from the archives next to an index",
		ArgsUsage: "<index.idx>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "Output directory",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			input, err := requireInput(cmd)
			if err != nil {
				return err
			}

			idx, err := vfs.ReadFile(input)
			if err != nil {
				return err
			}

			outDir := cmd.String("out")
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			// Archive blobs live next to the index.
			baseDir := filepath.Dir(input)
			for i := range idx.FileSystems {
				if err := extractArchive(&idx.FileSystems[i], baseDir, outDir); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// extractArchive copies every live file's raw bytes out of one archive
// blob. Compressed and encrypted payloads are copied verbatim.
func extractArchive(fs *vfs.Metadata, baseDir, outDir string) error {
	blob, err := os.Open(filepath.Join(baseDir, fs.Filename))
	if err != nil {
		return fmt.Errorf("open archive %s: %w", fs.Filename, err)
	}
	defer blob.Close()

	for i := range fs.Files {
		file := &fs.Files[i]
		if file.IsDeleted {
			continue
		}

		dest := filepath.Join(outDir, file.Filepath)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("create directory for %s: %w", file.Filepath, err)
		}

		out, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create %s: %w", dest, err)
		}
		if _, err := io.Copy(out, file.Open(blob)); err != nil {
			out.Close()
			return fmt.Errorf("extract %s: %w", file.Filepath, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close %s: %w", dest, err)
		}
	}
	return nil
}
