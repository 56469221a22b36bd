package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/plotboard/internal/board"
)

// sceneFlags binds the payload fields shared by scene add and scene edit.
type sceneFlags struct {
	title, location, timeOfDay, image string
}

func (sf *sceneFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sf.title, "title", "", "scene title")
	cmd.Flags().StringVar(&sf.location, "location", "", "scene location, e.g. \"INT. VAULT\"")
	cmd.Flags().StringVar(&sf.timeOfDay, "time", "", "time of day (DAY|NIGHT|DUSK|DAWN)")
	cmd.Flags().StringVar(&sf.image, "image", "", "hero image URL")
}

// overlay copies the flags that were set on cmd onto p.
func (sf *sceneFlags) overlay(cmd *cobra.Command, p board.Payload) board.Payload {
	if cmd.Flags().Changed("title") {
		p.Title = sf.title
	}
	if cmd.Flags().Changed("location") {
		p.Location = sf.location
	}
	if cmd.Flags().Changed("time") {
		p.TimeOfDay = sf.timeOfDay
	}
	if cmd.Flags().Changed("image") {
		p.HeroImageURL = sf.image
	}
	return p
}

// NewSceneCommand creates the scene command group.
func NewSceneCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Add, edit and delete scenes",
	}

	cmd.AddCommand(newSceneAddCommand(rootOpts))
	cmd.AddCommand(newSceneEditCommand(rootOpts))
	cmd.AddCommand(newSceneDeleteCommand(rootOpts))
	return cmd
}

func newSceneAddCommand(rootOpts *RootOptions) *cobra.Command {
	sf := &sceneFlags{}

	cmd := &cobra.Command{
		Use:     "add <act-id>",
		Short:   "Append a scene to the end of an act",
		Example: `  plotboard scene add <act-id> --title "Opening" --location "EXT. ROOF" --time NIGHT`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "add scene", func(ctx context.Context, s *session, f *OutputFormatter) error {
				scene, err := s.repo.AddScene(ctx, args[0], sf.overlay(cmd, board.Payload{}))
				if err != nil {
					return err
				}
				return f.Success(sceneView{scene})
			})
		},
	}

	sf.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newSceneEditCommand(rootOpts *RootOptions) *cobra.Command {
	sf := &sceneFlags{}

	cmd := &cobra.Command{
		Use:   "edit <scene-id>",
		Short: "Change a scene's title, location, time of day or image",
		Long: `Change a scene's descriptive fields. Only the flags given are changed;
pass an empty value to clear an optional field. The scene keeps its act and
position.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "edit scene", func(ctx context.Context, s *session, f *OutputFormatter) error {
				current, err := s.repo.GetScene(ctx, args[0])
				if err != nil {
					return err
				}
				scene, err := s.repo.UpdateScenePayload(ctx, args[0], sf.overlay(cmd, current.Payload))
				if err != nil {
					return err
				}
				return f.Success(sceneView{scene})
			})
		},
	}

	sf.register(cmd)
	return cmd
}

func newSceneDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <scene-id>",
		Short: "Delete a scene and close the gap in its act",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, "delete scene", func(ctx context.Context, s *session, f *OutputFormatter) error {
				if err := s.repo.DeleteScene(ctx, args[0]); err != nil {
					return err
				}
				return f.Success(message{Text: "deleted scene " + args[0], ID: args[0]})
			})
		},
	}
}
