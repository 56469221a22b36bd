package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/plotboard/internal/board"
	"github.com/roach88/plotboard/internal/repository"
)

// NewProjectCommand creates the project command group.
func NewProjectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Create, list and delete projects",
	}

	cmd.AddCommand(newProjectCreateCommand(rootOpts))
	cmd.AddCommand(newProjectListCommand(rootOpts))
	cmd.AddCommand(newProjectDeleteCommand(rootOpts))
	cmd.AddCommand(newProjectLayoutCommand(rootOpts))
	cmd.AddCommand(newProjectRatioCommand(rootOpts))
	return cmd
}

func newProjectCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var acts int

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project with empty acts",
		Example: `  plotboard project create "The Heist"
  plotboard project create Pilot --acts 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "create project", func(ctx context.Context, s *session, f *OutputFormatter) error {
				p, err := s.repo.CreateProject(ctx, args[0], acts)
				if err != nil {
					return err
				}
				f.VerboseLog("created %d acts", p.ActStructure)
				return f.Success(projectView{p})
			})
		},
	}

	cmd.Flags().IntVar(&acts, "acts", board.DefaultActStructure, "number of acts to create")
	return cmd
}

func newProjectListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects, most recently modified first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "list projects", func(ctx context.Context, s *session, f *OutputFormatter) error {
				projects, err := s.repo.ListProjects(ctx)
				if err != nil {
					return err
				}
				if projects == nil {
					projects = []board.Project{}
				}
				return f.Success(projectList(projects))
			})
		},
	}
}

func newProjectDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project with all its acts and scenes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "delete project", func(ctx context.Context, s *session, f *OutputFormatter) error {
				if err := s.repo.DeleteProject(ctx, args[0]); err != nil {
					return err
				}
				return f.Success(message{Text: "deleted project " + args[0], ID: args[0]})
			})
		},
	}
}

func newProjectLayoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "layout <project-id> <vertical|horizontal>",
		Short:     "Set the direction scenes flow inside acts",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(board.LayoutVertical), string(board.LayoutHorizontal)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "set layout", func(ctx context.Context, s *session, f *OutputFormatter) error {
				if err := s.repo.SetLayout(ctx, args[0], board.Layout(args[1])); err != nil {
					return err
				}
				p, err := s.repo.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				return f.Success(projectView{p})
			})
		},
	}
}

func newProjectRatioCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ratio <project-id> <ratio>",
		Short: "Set the default cell dimension ratio",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ratio, err := parseRatio(args[1])
			if err != nil {
				return rootOpts.formatter(cmd).Fail("set project ratio", err)
			}
			return withStore(cmd, rootOpts, "set project ratio", func(ctx context.Context, s *session, f *OutputFormatter) error {
				if err := s.repo.SetProjectRatio(ctx, args[0], ratio); err != nil {
					return err
				}
				p, err := s.repo.GetProject(ctx, args[0])
				if err != nil {
					return err
				}
				return f.Success(projectView{p})
			})
		},
	}
}

func parseRatio(s string) (float64, error) {
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("ratio %q: %w", s, repository.ErrInvalid)
	}
	return r, nil
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("position %q: %w", s, repository.ErrInvalid)
	}
	return n, nil
}
