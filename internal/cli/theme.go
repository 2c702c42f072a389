package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/navsite/internal/portal"
)

func newThemeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the saved skin and mode",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			app, err := e.portal()
			if err != nil {
				return err
			}
			printTheme(e, app.Theme.Theme())
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "skins",
			Short: "List the available skins",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				app, err := e.portal()
				if err != nil {
					return err
				}
				current := app.Theme.Theme().Skin
				tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
				for _, s := range portal.Skins() {
					mark := " "
					if s.Name == current {
						mark = "*"
					}
					fmt.Fprintf(tw, "%s %s\t%s\t%s\n", mark, s.Name, s.DisplayName, s.Primary)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "skin <name>",
			Short: "Select a skin",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				app, err := e.portal()
				if err != nil {
					return err
				}
				if _, ok := portal.LookupSkin(args[0]); !ok {
					return fmt.Errorf("unknown skin %q", args[0])
				}
				app.Theme.SetSkin(args[0])
				printTheme(e, app.Theme.Theme())
				return nil
			},
		},
		&cobra.Command{
			Use:       "mode <light|dark>",
			Short:     "Select light or dark mode",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{string(portal.ModeLight), string(portal.ModeDark)},
			RunE: func(_ *cobra.Command, args []string) error {
				app, err := e.portal()
				if err != nil {
					return err
				}
				m := portal.Mode(args[0])
				if !m.Valid() {
					return fmt.Errorf("unknown mode %q", args[0])
				}
				app.Theme.SetMode(m)
				printTheme(e, app.Theme.Theme())
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Switch between light and dark mode",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				app, err := e.portal()
				if err != nil {
					return err
				}
				app.Theme.ToggleMode()
				printTheme(e, app.Theme.Theme())
				return nil
			},
		},
	)
	return cmd
}

func printTheme(e *env, t portal.Theme) {
	name := t.Skin
	if s, ok := portal.LookupSkin(t.Skin); ok {
		name = s.Name + " (" + s.DisplayName + ")"
	}
	fmt.Fprintf(e.out, "skin: %s\nmode: %s\n", name, t.Mode)
}

func newRenderCmd(e *env) *cobra.Command {
	var (
		out      string
		query    string
		category string
		refresh  bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the portal page to a static HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.portal()
			if err != nil {
				return err
			}
			res := app.Load(cmd.Context(), refresh)
			if category != "" {
				app.Renderer.ShowTools(category)
			}
			page := app.Page(res, query)

			w := e.out
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := portal.RenderPage(w, page); err != nil {
				return err
			}
			if w != e.out {
				fmt.Fprintf(e.out, "wrote %s (%d links)\n", out, len(page.Tools))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	f.StringVarP(&query, "query", "q", "", "only render links matching this search")
	f.StringVarP(&category, "category", "c", "", "select this category")
	f.BoolVar(&refresh, "refresh", false, "bypass the local cache")
	return cmd
}

func newFlushFaviconsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "flush-favicons",
		Short: "Forget cached favicon addresses",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			app, err := e.portal()
			if err != nil {
				return err
			}
			if err := app.Favicons.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(e.out, "favicon cache cleared")
			return nil
		},
	}
}

func newInstallPromptCmd(e *env) *cobra.Command {
	var dismiss, installed bool
	cmd := &cobra.Command{
		Use:   "install-prompt",
		Short: "Show or update the install prompt state",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			app, err := e.portal()
			if err != nil {
				return err
			}
			switch {
			case dismiss:
				err = app.Install.Dismiss()
			case installed:
				err = app.Install.Installed()
			}
			if err != nil {
				return err
			}
			if app.Install.ShouldShow() {
				fmt.Fprintln(e.out, "install prompt: shown")
			} else {
				fmt.Fprintln(e.out, "install prompt: suppressed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dismiss, "dismiss", false, "record a dismissal now")
	cmd.Flags().BoolVar(&installed, "installed", false, "clear the dismissal record")
	cmd.MarkFlagsMutuallyExclusive("dismiss", "installed")
	return cmd
}
