package ports

import (
	"context"

	"github.com/bnema/waapi-creator/internal/domain"
)

// Session is a live connection to the authoring tool.
type Session interface {
	Info(ctx context.Context) (domain.ToolInfo, error)
	SelectedObjects(ctx context.Context) ([]domain.Object, error)
	// WatchSelection returns a channel carrying every selection change. It
	// is closed when the session ends.
	WatchSelection(ctx context.Context) (<-chan []domain.Object, error)
	CreateObject(ctx context.Context, req domain.CreationRequest) (domain.Object, error)
	Close() error
}

type Connector interface {
	Connect(ctx context.Context) (Session, error)
}
