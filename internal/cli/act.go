package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/plotboard/internal/controller"
	"github.com/roach88/plotboard/internal/logging"
	"github.com/roach88/plotboard/internal/reorder"
)

// NewActCommand creates the act command group.
func NewActCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "act",
		Short: "Rename, resize and reorder acts",
	}

	cmd.AddCommand(newActRenameCommand(rootOpts))
	cmd.AddCommand(newActRatioCommand(rootOpts))
	cmd.AddCommand(newActMoveCommand(rootOpts))
	return cmd
}

func newActRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <act-id> <name>",
		Short: "Set an act's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "rename act", func(ctx context.Context, s *session, f *OutputFormatter) error {
				if err := s.repo.RenameAct(ctx, args[0], args[1]); err != nil {
					return err
				}
				return f.Success(message{Text: "renamed act " + args[0], ID: args[0]})
			})
		},
	}
}

func newActRatioCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ratio <act-id> <ratio>",
		Short: "Set an act's cell dimension ratio",
		Long: `Set an act's cell dimension ratio.

The ratio only affects how the act is displayed; it never changes the order
of acts or scenes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratio, err := parseRatio(args[1])
			if err != nil {
				return rootOpts.formatter(cmd).Fail("set act ratio", err)
			}
			return withStore(cmd, rootOpts, "set act ratio", func(ctx context.Context, s *session, f *OutputFormatter) error {
				if err := s.repo.SetActRatio(ctx, args[0], ratio); err != nil {
					return err
				}
				return f.Success(message{Text: "set ratio of act " + args[0], ID: args[0]})
			})
		},
	}
}

func newActMoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <project-id> <act-id> <position>",
		Short: "Move an act to a new position (1-based)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[2])
			if err != nil {
				return rootOpts.formatter(cmd).Fail("move act", err)
			}
			return withStore(cmd, rootOpts, "move act", func(ctx context.Context, s *session, f *OutputFormatter) error {
				c := controller.New(s.repo, args[0], controller.WithLogger(logging.Component(rootOpts.Logger, "controller")))
				if err := c.Load(ctx); err != nil {
					return err
				}
				res, err := c.MoveAct(ctx, args[1], pos)
				if err != nil {
					return err
				}
				if !res.Applied() {
					return ignored(f, string(res.NoOp))
				}
				changes := res.Changes
				if changes == nil {
					changes = []reorder.ActChange{}
				}
				return f.Success(actMoveView{ActID: args[1], Number: pos, Changes: changes})
			})
		},
	}
}
