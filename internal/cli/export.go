package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

// exportView reports a written snapshot.
type exportView struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

func (v exportView) String() string {
	return fmt.Sprintf("wrote %d bytes to %s", v.Bytes, v.Path)
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <out-file>",
		Short: "Write a snapshot of the whole database to a file",
		Long: `Write a consistent SQLite image of the whole database to out-file.

The file is replaced atomically, so an interrupted export never leaves a
partial image behind. The image can be opened with --db.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "export snapshot", func(ctx context.Context, s *session, f *OutputFormatter) error {
				image, err := s.proxy.ExportSnapshot().Wait(ctx)
				if err != nil {
					return err
				}

				path := args[0]
				if err := writeSnapshot(path, image); err != nil {
					_ = f.Error(ErrCodeWriteFailed, err.Error(), nil)
					return WrapExitError(ExitCommandError, "write snapshot", err)
				}

				f.VerboseLog("snapshot of %s", rootOpts.Config.Database.Path)
				return f.Success(exportView{Path: path, Bytes: len(image)})
			})
		},
	}
}

func writeSnapshot(path string, image []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(image)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	// atomic.WriteFile doesn't set permissions for new files
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("set snapshot permissions: %w", err)
	}
	return nil
}
