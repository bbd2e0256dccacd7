// Package templates implements the adri templates command group.
package templates

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adri-engine/adri/internal/template"
)

// NewTemplatesCommand creates the templates command group.
func NewTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect and validate assessment templates",
	}

	cmd.AddCommand(newListCommand(), newShowCommand(), newValidateCommand())
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in template catalog",
		RunE: func(_ *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tREQUIRED COLUMNS")
			for _, tpl := range template.Builtins() {
				fmt.Fprintf(w, "%s\t%s\t%d\n", tpl.ID, tpl.Name, len(tpl.RequiredColumns))
			}
			return w.Flush()
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a built-in template as yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tpl, err := template.Find(args[0])
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(tpl)
			if err != nil {
				return fmt.Errorf("encoding template: %w", err)
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a template file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tpl, err := template.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: valid (%d required roles, %d optional)\n",
				tpl.ID, len(tpl.RequiredColumns), len(tpl.OptionalColumns))
			return nil
		},
	}
}
