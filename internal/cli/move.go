package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/plotboard/internal/controller"
	"github.com/roach88/plotboard/internal/logging"
	"github.com/roach88/plotboard/internal/reorder"
)

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	var over string

	cmd := &cobra.Command{
		Use:   "move <project-id> <scene-id> <act-id>",
		Short: "Move a scene to an act, optionally onto a sibling",
		Long: `Move a scene the way dropping a card on the board does.

With --over the scene takes the sibling's position. Without it the scene
lands in the target act after the last scene of the nearest earlier act that
has scenes, or at the head of the act when there is none.`,
		Example: `  plotboard move <project> <scene> <act>
  plotboard move <project> <scene> <act> --over <sibling>`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mv := reorder.Move{SceneID: args[1], TargetActID: args[2], TargetSceneID: over}
			return runMove(cmd, rootOpts, args[0], func(ctx context.Context, c *controller.Controller) (reorder.Move, reorder.Result, error) {
				res, err := c.Move(ctx, mv)
				return mv, res, err
			})
		},
	}

	cmd.Flags().StringVar(&over, "over", "", "sibling scene the scene is dropped on")
	return cmd
}

// NewDropCommand creates the drop command.
func NewDropCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <project-id> <scene-id> <over-id>",
		Short: "Drop a scene over a scene or act id",
		Long: `Drop a scene over another element of the board. over-id may name an act
or a scene; the target act is the act itself or the act holding that scene.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(cmd, rootOpts, args[0], func(ctx context.Context, c *controller.Controller) (reorder.Move, reorder.Result, error) {
				mv, ok := reorder.ResolveDrop(c.Board(), args[1], args[2])
				if !ok {
					mv = reorder.Move{SceneID: args[1]}
				}
				res, err := c.Drop(ctx, args[1], args[2])
				return mv, res, err
			})
		},
	}
}

func runMove(cmd *cobra.Command, rootOpts *RootOptions, projectID string,
	apply func(context.Context, *controller.Controller) (reorder.Move, reorder.Result, error)) error {
	return withStore(cmd, rootOpts, "move scene", func(ctx context.Context, s *session, f *OutputFormatter) error {
		c := controller.New(s.repo, projectID, controller.WithLogger(logging.Component(rootOpts.Logger, "controller")))
		if err := c.Load(ctx); err != nil {
			return err
		}

		mv, res, err := apply(ctx, c)
		if err != nil {
			return err
		}
		if !res.Applied() {
			return ignored(f, string(res.NoOp))
		}
		return f.Success(newMoveView(mv, res))
	})
}

// ignored reports a move the board could not resolve.
func ignored(f *OutputFormatter, reason string) error {
	msg := fmt.Sprintf("move ignored: %s", reason)
	if err := f.Error(ErrCodeMoveIgnored, msg, nil); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}
