package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	statusadapter "github.com/bnema/waapi-creator/internal/adapters/render/status"
	"github.com/bnema/waapi-creator/internal/application"
	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/spf13/cobra"
)

type createOptions struct {
	objectType string
	parent     string
	file       string
	isVoice    bool
	isRandom   bool
}

func newCreateCmd(app *app) *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create one object per input line under the selected object",
		Long:  "Reads object names from --file or stdin, one per line, and creates them in order under --parent or the object currently selected in Wwise. The batch stops at the first failure.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreate(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.objectType, "type", "", "Object type to create (see `waapi-creator types`)")
	cmd.Flags().StringVar(&opts.parent, "parent", "", "Parent object ID (default: current selection)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Read names from this file instead of stdin")
	cmd.Flags().BoolVar(&opts.isVoice, "voice", false, "Mark created Sound objects as voice")
	cmd.Flags().BoolVar(&opts.isRandom, "random", true, "Use random playback for created RandomSequenceContainer objects")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runCreate(cmd *cobra.Command, app *app, opts createOptions) error {
	objectType, err := app.catalog.Lookup(opts.objectType)
	if err != nil {
		return err
	}

	cfg, err := app.config()
	if err != nil {
		return err
	}

	names, err := readNames(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}

	logger, closeLog, err := app.newLogger(cfg, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	creator := app.newCreator(cfg, logger)

	var conn application.Connection
	err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Connecting to Wwise...", func(ctx context.Context) error {
		var connectErr error
		conn, connectErr = creator.Connect(ctx)
		return connectErr
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := creator.Disconnect(conn.Session); closeErr != nil {
			logger.Warn("disconnect failed", "error", closeErr)
		}
	}()

	parent := domain.ObjectID(opts.parent)
	if parent == "" {
		parent = conn.Selection.Object.ID
	}

	batch := domain.BatchRequest{
		Names:          names,
		Parent:         parent,
		Type:           objectType.Name,
		IsVoice:        opts.isVoice,
		IsRandom:       opts.isRandom,
		OnNameConflict: cfg.Create.OnNameConflict,
	}

	out := cmd.OutOrStdout()
	started := time.Now()
	result, err := creator.CreateObjects(cmd.Context(), conn.Session, batch, func(line string) {
		_, _ = fmt.Fprintln(out, line)
	})

	var precondition *application.PreconditionError
	if errors.As(err, &precondition) {
		return err
	}

	summary := statusadapter.Summary{
		Tool:    conn.Info,
		Parent:  parent,
		Type:    objectType.Name,
		Total:   len(domain.NormalizeNames(names)),
		Created: result.Created,
		Elapsed: time.Since(started),
	}
	var callErr *application.RemoteCallError
	if errors.As(err, &callErr) {
		summary.Failed = callErr.Name
		summary.Reason = application.UserMessage(callErr)
	}

	if rendered, renderErr := statusadapter.Render(summary); renderErr != nil {
		logger.Warn("render batch summary failed", "error", renderErr)
	} else {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), rendered)
	}

	return err
}

func readNames(stdin io.Reader, path string) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}

	return domain.ParseNames(string(data)), nil
}
