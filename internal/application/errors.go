package application

import (
	"errors"
	"fmt"
)

// ConnectionError reports a failed connect attempt. The caller keeps no
// session.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to wwise: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// PreconditionError reports a batch rejected before any remote call.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string {
	return e.Err.Error()
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// RemoteCallError reports the create call that stopped a batch.
type RemoteCallError struct {
	Name string
	Err  error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("create %q: %v", e.Name, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// remoteMessager is implemented by transport errors that carry the server's
// human-readable message.
type remoteMessager interface {
	RemoteMessage() string
}

// UserMessage returns the text shown to the user for err, preferring the
// server-supplied message when there is one.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var remote remoteMessager
	if errors.As(err, &remote) {
		if msg := remote.RemoteMessage(); msg != "" {
			return msg
		}
	}

	return err.Error()
}
