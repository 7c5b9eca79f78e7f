package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/bnema/waapi-creator/internal/adapters/lock"
	"github.com/bnema/waapi-creator/internal/adapters/render/form"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const alreadyRunningMessage = "waapi-creator is already running"

func runForm(cmd *cobra.Command, app *app) (err error) {
	cfg, err := app.config()
	if err != nil {
		return err
	}

	guard, err := lock.Acquire(cfg.Lock.Path)
	if errors.Is(err, lock.ErrAlreadyRunning) {
		_, err = fmt.Fprintln(cmd.ErrOrStderr(), alreadyRunningMessage)
		return err
	}
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, guard.Release())
	}()

	logger, closeLog, err := app.newLogger(cfg, io.Discard, true)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	creator := app.newCreator(cfg, logger)
	model := form.New(form.Options{
		Context:        cmd.Context(),
		Creator:        creator,
		Catalog:        app.catalog,
		DefaultType:    cfg.UI.DefaultType,
		Pin:            cfg.UI.Pin,
		OnNameConflict: cfg.Create.OnNameConflict,
	})

	opts := []tea.ProgramOption{tea.WithContext(cmd.Context())}
	if cfg.UI.Pin {
		opts = append(opts, tea.WithAltScreen())
	}

	logger.Info("form started", "url", cfg.WAAPI.URL, "lock", guard.Path())
	finalModel, runErr := tea.NewProgram(model, opts...).Run()

	if result, ok := finalModel.(form.Model); ok {
		if closeErr := creator.Disconnect(result.Session()); closeErr != nil {
			logger.Warn("disconnect on exit failed", "error", closeErr)
		}
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run form: %w", runErr)
	}

	logger.Info("form closed")
	return nil
}
