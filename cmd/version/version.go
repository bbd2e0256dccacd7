// Package version implements the adri version command.
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adri-engine/adri/internal/version"
)

var compare []string

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the methodology version, or compare two report versions",
		Long: `Version prints the scoring methodology version stamped into reports.

With --compare, it reports whether scores produced under two methodology
versions are safely comparable: they are iff the major components match.`,
		Example: `  adri version
  adri version --compare 0.2.0,0.4.2`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if len(compare) == 0 {
				fmt.Printf("adri methodology version %s\n", version.Version)
				return nil
			}
			if len(compare) != 2 {
				return fmt.Errorf("--compare wants exactly two versions, got %d", len(compare))
			}
			if version.Compatible(compare[0], compare[1]) {
				fmt.Printf("%s and %s are comparable\n", compare[0], compare[1])
				return nil
			}
			return fmt.Errorf("%s and %s are not comparable: scores were produced under different methodology majors", compare[0], compare[1])
		},
	}

	cmd.Flags().StringSliceVar(&compare, "compare", nil, "Two report versions to compare, e.g. --compare 0.2.0,1.0.0")
	return cmd
}
