package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/bnema/waapi-creator/internal/ports"
)

// Report receives one human-readable output line.
type Report func(line string)

type Creator struct {
	connector ports.Connector
	logger    *slog.Logger
}

func NewCreator(connector ports.Connector, logger *slog.Logger) *Creator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Creator{connector: connector, logger: logger}
}

// Connection is the state produced by a successful Connect.
type Connection struct {
	Session   ports.Session
	Info      domain.ToolInfo
	Selection domain.Selection
	Updates   <-chan []domain.Object
}

func (c *Creator) Connect(ctx context.Context) (Connection, error) {
	session, err := c.connector.Connect(ctx)
	if err != nil {
		c.logger.Warn("waapi connect failed", "error", err)
		return Connection{}, &ConnectionError{Err: err}
	}

	conn, err := c.prepare(ctx, session)
	if err != nil {
		if closeErr := session.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		c.logger.Warn("waapi session setup failed", "error", err)
		return Connection{}, &ConnectionError{Err: err}
	}

	c.logger.Info("connected to waapi",
		"tool", conn.Info.String(),
		"parent_id", string(conn.Selection.Object.ID),
	)

	return conn, nil
}

func (c *Creator) prepare(ctx context.Context, session ports.Session) (Connection, error) {
	conn := Connection{Session: session}

	info, err := session.Info(ctx)
	if err != nil {
		c.logger.Debug("waapi getInfo failed", "error", err)
	} else {
		conn.Info = info
	}

	objects, err := session.SelectedObjects(ctx)
	if err != nil {
		return Connection{}, fmt.Errorf("get selected objects: %w", err)
	}
	if len(objects) > 0 {
		conn.Selection = domain.Selection{Object: objects[0]}
	}

	updates, err := session.WatchSelection(ctx)
	if err != nil {
		return Connection{}, fmt.Errorf("subscribe to selection changes: %w", err)
	}
	conn.Updates = updates

	return conn, nil
}

func (c *Creator) Disconnect(session ports.Session) error {
	if session == nil {
		return nil
	}

	if err := session.Close(); err != nil {
		return fmt.Errorf("close waapi session: %w", err)
	}

	c.logger.Info("disconnected from waapi")
	return nil
}

type BatchResult struct {
	Created []domain.Object
}

// CreateObjects submits one create call per name, in order, and stops at the
// first remote failure. Objects created before the failure stay created.
func (c *Creator) CreateObjects(ctx context.Context, session ports.Session, batch domain.BatchRequest, report Report) (BatchResult, error) {
	if report == nil {
		report = func(string) {}
	}

	batch.Names = domain.NormalizeNames(batch.Names)
	if err := checkPreconditions(session, batch); err != nil {
		report(diagnostic(err))
		return BatchResult{}, &PreconditionError{Err: err}
	}

	var result BatchResult
	for _, req := range batch.Requests() {
		created, err := session.CreateObject(ctx, req)
		if err != nil {
			callErr := &RemoteCallError{Name: req.Name, Err: err}
			report(fmt.Sprintf("Failed to create %s: %s", req.Name, UserMessage(err)))
			c.logger.Warn("create object failed",
				"name", req.Name,
				"type", req.Type,
				"parent_id", string(req.Parent),
				"created", len(result.Created),
				"error", err,
			)
			return result, callErr
		}

		if created.Name == "" {
			created.Name = req.Name
		}
		if created.Type == "" {
			created.Type = req.Type
		}
		result.Created = append(result.Created, created)

		report(fmt.Sprintf("Create %s successfully", created.Name))
		c.logger.Debug("object created", "name", created.Name, "id", string(created.ID), "type", created.Type)
	}

	return result, nil
}

func checkPreconditions(session ports.Session, batch domain.BatchRequest) error {
	switch {
	case session == nil:
		return domain.ErrNotConnected
	case batch.Parent == "":
		return domain.ErrNoParent
	case len(batch.Names) == 0:
		return domain.ErrNoNames
	default:
		return nil
	}
}

func diagnostic(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		return "Cannot connect to Wwise"
	case errors.Is(err, domain.ErrNoParent):
		return "Please select an object"
	case errors.Is(err, domain.ErrNoNames):
		return "Please input a name"
	default:
		return err.Error()
	}
}
