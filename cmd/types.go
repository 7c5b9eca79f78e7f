package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/spf13/cobra"
)

func newTypesCmd(app *app) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the object types that can be created",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTypes(cmd, app.catalog, prefix)
		},
	}

	cmd.Flags().StringVar(&prefix, "match", "", "Only list types starting with this prefix (case-insensitive)")

	return cmd
}

func runTypes(cmd *cobra.Command, catalog domain.Catalog, prefix string) error {
	lowered := strings.ToLower(prefix)

	var lines []string
	for _, objectType := range catalog.Types() {
		if !strings.HasPrefix(strings.ToLower(objectType.Name), lowered) {
			continue
		}

		line := objectType.Name
		if objectType.Flag != nil {
			line = fmt.Sprintf("%s\t%s (default %t)", line, objectType.Flag.Property, objectType.Flag.Default)
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return fmt.Errorf("%w: no type matches %q", domain.ErrUnknownType, prefix)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
	return err
}
