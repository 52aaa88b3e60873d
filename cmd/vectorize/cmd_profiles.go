package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-vectorize/internal/config"
	"github.com/askiada/go-vectorize/pkg/vectorize/model"
)

type profilesFlags struct {
	file     string
	markdown bool
}

func newProfilesCmd(a *app) *cobra.Command {
	var flags profilesFlags

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the converter profiles in attempt order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := a.profiles(flags.file)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderProfiles(profiles, flags.markdown))

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.file, "profiles", "", "YAML, JSON or TOML profiles file (overrides trace.profiles_file)")
	f.BoolVar(&flags.markdown, "markdown", false, "Render the table as Markdown")

	return cmd
}

// profiles returns the profiles from file, then from the configured file, then the built-in ones.
func (a *app) profiles(file string) ([]model.ConverterProfile, error) {
	if file == "" && a.cfg != nil {
		file = a.cfg.Trace.ProfilesFile
	}
	if file == "" {
		return model.DefaultProfiles(), nil
	}

	profiles, err := config.LoadProfiles(file)
	if err != nil {
		return nil, errors.Wrap(err, "load profiles")
	}

	return profiles, nil
}

func renderProfiles(profiles []model.ConverterProfile, markdown bool) string {
	w := table.NewWriter()
	w.AppendHeader(table.Row{"#", "Name", "Mode", "Corner", "Length", "Iterations", "Splice", "Speckle", "Precision"})
	for i, p := range profiles {
		w.AppendRow(table.Row{
			i + 1, p.Name, string(p.Mode), p.CornerThreshold,
			strconv.FormatFloat(p.LengthThreshold, 'f', -1, 64),
			p.MaxIterations, p.SpliceThreshold, p.FilterSpeckle, p.PathPrecision,
		})
	}
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	if markdown {
		return w.RenderMarkdown()
	}
	w.SetStyle(table.StyleLight)

	return w.Render()
}
