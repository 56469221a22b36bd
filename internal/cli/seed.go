package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/plotboard/internal/seed"
)

// seedView summarizes a seed document or an imported project.
type seedView struct {
	ProjectID string `json:"project_id,omitempty"`
	Name      string `json:"name"`
	Acts      int    `json:"acts"`
	Scenes    int    `json:"scenes"`
	DryRun    bool   `json:"dry_run,omitempty"`
}

func (v seedView) String() string {
	if v.DryRun {
		return fmt.Sprintf("✓ %s is valid: %d acts, %d scenes", v.Name, v.Acts, v.Scenes)
	}
	return fmt.Sprintf("seeded %s  %s  (%d acts, %d scenes)", v.ProjectID, v.Name, v.Acts, v.Scenes)
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed <file.cue>",
		Short: "Create a project from a CUE seed file",
		Long: `Create a project with its acts and scenes from a CUE document.

The document is validated before anything is written; validation errors are
reported with their file position. Use --dry-run to validate only.`,
		Example: `  plotboard seed heist.cue
  plotboard seed heist.cue --dry-run --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			p, err := seed.Load(args[0])
			if err != nil {
				return f.Fail("load seed", err)
			}
			view := seedView{Name: p.Name, Acts: len(p.Acts), Scenes: p.SceneCount()}
			f.VerboseLog("seed %s: %d acts, %d scenes", args[0], view.Acts, view.Scenes)

			if dryRun {
				view.DryRun = true
				return f.Success(view)
			}

			return withStore(cmd, rootOpts, "import seed", func(ctx context.Context, s *session, f *OutputFormatter) error {
				proj, err := seed.Import(ctx, s.repo, p)
				if err != nil {
					return err
				}
				view.ProjectID = proj.ID
				return f.Success(view)
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the seed without writing")
	return cmd
}
