package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/waapi-creator/internal/application"
	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/bnema/waapi-creator/internal/ports"
	"github.com/spf13/cobra"
)

func newSelectionCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "selection",
		Short: "Print the object currently selected in Wwise",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, app, func(ctx context.Context, session ports.Session) error {
				objects, err := session.SelectedObjects(ctx)
				if err != nil {
					return fmt.Errorf("get selected objects: %w", err)
				}
				return writeSelection(cmd, objects, asJSON)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeSelection(cmd *cobra.Command, objects []domain.Object, asJSON bool) error {
	if asJSON {
		if objects == nil {
			objects = []domain.Object{}
		}
		return writeJSON(cmd, objects)
	}

	if len(objects) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "nothing selected")
		return err
	}

	for _, object := range objects {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", object.Label(), object.ID); err != nil {
			return err
		}
	}
	return nil
}

func newInfoCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the version of the connected Wwise instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, app, func(ctx context.Context, session ports.Session) error {
				info, err := session.Info(ctx)
				if err != nil {
					return fmt.Errorf("get info: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, info)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

// withSession opens a short-lived session for one query and closes it
// afterwards.
func withSession(cmd *cobra.Command, app *app, fn func(context.Context, ports.Session) error) (err error) {
	cfg, err := app.config()
	if err != nil {
		return err
	}

	logger, closeLog, err := app.newLogger(cfg, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	session, err := app.newConnector(cfg, logger).Connect(cmd.Context())
	if err != nil {
		return &application.ConnectionError{Err: err}
	}
	defer func() {
		err = errors.Join(err, session.Close())
	}()

	return fn(cmd.Context(), session)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
