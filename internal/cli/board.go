package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewBoardCommand creates the board command group.
func NewBoardCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Inspect project boards",
	}
	cmd.AddCommand(newBoardShowCommand(rootOpts))
	return cmd
}

func newBoardShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project's acts and scenes in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "show board", func(ctx context.Context, s *session, f *OutputFormatter) error {
				p, err := s.repo.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				b, err := s.repo.LoadBoard(ctx, args[0])
				if err != nil {
					return err
				}
				if err := b.Validate(); err != nil {
					f.VerboseLog("warning: %v", err)
				}
				return f.Success(newBoardView(p, b))
			})
		},
	}
}
