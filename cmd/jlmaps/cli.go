package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wright-research/jlawson-maps/internal/editor"
	"github.com/wright-research/jlawson-maps/internal/geo"
	"github.com/wright-research/jlawson-maps/pkg/core"
)

func init() {
	rootCmd.AddCommand(
		newListCmd(),
		newShowCmd(),
		newCreateCmd(),
		newRenameCmd(),
		newNoteCmd(),
		newDeleteCmd(),
		newExportCmd(),
		newImportCmd(),
	)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved templates, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runtimeApp.newEditor()
			if err != nil {
				return err
			}
			summaries, err := svc.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No templates saved.")
				return nil
			}
			for _, s := range summaries {
				line := fmt.Sprintf("%s  %s  (updated %s)",
					s.ID, s.Name, s.UpdatedAt.Format("2006-01-02 15:04"))
				if s.Note != "" {
					line += "  - " + s.Note
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Load a template and print its full map state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runtimeApp.newEditor()
			if err != nil {
				return err
			}
			tpl, err := svc.OpenTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTemplate(tpl)
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	var (
		basemap  string
		center   string
		zoom     float64
		pinSpecs []string
		counties []string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a template from flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runtimeApp.newEditor()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			state := core.NewMapState()
			bm, err := core.ParseBasemap(basemap)
			if err != nil {
				return err
			}
			state.Basemap = bm
			if center != "" {
				pos, err := geo.ParseLonLat(center)
				if err != nil {
					return fmt.Errorf("parsing --center: %w", err)
				}
				state.Camera.Center = pos
			}
			state.Camera.Zoom = zoom
			if len(counties) > 0 {
				state.CountyOverlay = core.CountyOverlay{
					Enabled:          true,
					SelectedCounties: core.NormalizeCounties(counties),
				}
			}
			if err := svc.Serializer().Apply(ctx, state); err != nil {
				return err
			}
			for _, spec := range pinSpecs {
				if err := addPinFromSpec(svc, spec); err != nil {
					return err
				}
			}

			tpl, err := svc.SaveTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created template %s (%s)\n", tpl.Name, tpl.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&basemap, "basemap", "street", "basemap: street, gray or satellite")
	cmd.Flags().StringVar(&center, "center", "", "camera center as lon,lat")
	cmd.Flags().Float64Var(&zoom, "zoom", 9.5, "camera zoom level")
	cmd.Flags().StringArrayVar(&pinSpecs, "pin", nil, "pin as category:lon,lat (repeatable)")
	cmd.Flags().StringArrayVar(&counties, "county", nil, "county to outline (repeatable)")
	return cmd
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runtimeApp.newEditor()
			if err != nil {
				return err
			}
			tpl, err := svc.RenameTemplate(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Renamed template %s to %s\n", tpl.ID, tpl.Name)
			return nil
		},
	}
}

func newNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <id> <text>",
		Short: "Set a template's note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runtimeApp.newEditor()
			if err != nil {
				return err
			}
			if err := svc.SetNote(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("Note saved.")
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runtimeApp.newEditor()
			if err != nil {
				return err
			}
			if err := svc.DeleteTemplate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Template deleted.")
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a template as portable JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runtimeApp.newEditor()
			if err != nil {
				return err
			}
			data, err := svc.ExportTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			fmt.Printf("Exported template to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a template from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := runtimeApp.newEditor()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			tpl, err := svc.ImportTemplate(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Printf("Imported template %s (%s)\n", tpl.Name, tpl.ID)
			return nil
		},
	}
}

// addPinFromSpec parses "category:lon,lat" and drops the pin through the
// registry so ids and display numbers are assigned normally.
func addPinFromSpec(svc *editor.Service, spec string) error {
	cat, coord, ok := strings.Cut(spec, ":")
	if !ok {
		return fmt.Errorf("pin spec %q must be category:lon,lat", spec)
	}
	category, err := core.ParseCategory(cat)
	if err != nil {
		return err
	}
	pos, err := geo.ParseLonLat(coord)
	if err != nil {
		return fmt.Errorf("parsing pin %q: %w", spec, err)
	}
	_, err = svc.Registry().AddPin(category, pos)
	return err
}

func printTemplate(tpl core.Template) {
	fmt.Printf("Template: %s (%s)\n", tpl.Name, tpl.ID)
	if tpl.Note != "" {
		fmt.Printf("Note:     %s\n", tpl.Note)
	}
	fmt.Printf("Updated:  %s\n", tpl.UpdatedAt.Format("2006-01-02 15:04:05"))

	st := tpl.MapState
	fmt.Printf("Camera:   center=%.5f,%.5f zoom=%.2f bearing=%.1f pitch=%.1f\n",
		st.Camera.Center.Lon, st.Camera.Center.Lat, st.Camera.Zoom, st.Camera.Bearing, st.Camera.Pitch)
	fmt.Printf("Basemap:  %s\n", st.Basemap)

	for _, c := range core.Categories {
		pins := st.PinsByCategory[c]
		if len(pins) == 0 {
			continue
		}
		marker := " "
		if c == st.CurrentCategory {
			marker = "*"
		}
		fmt.Printf("%s %s pins:\n", marker, c)
		for _, p := range pins {
			fmt.Printf("    #%d %s at %.5f,%.5f\n", p.DisplayNumber, p.ID, p.Position.Lon, p.Position.Lat)
		}
	}

	if st.CountyOverlay.Active() {
		fmt.Printf("Counties: %s\n", strings.Join(st.CountyOverlay.SelectedCounties, ", "))
	}
}
