package waapi

import (
	"errors"
	"fmt"

	"github.com/gammazero/nexus/v3/client"
	"github.com/gammazero/nexus/v3/wamp"
)

var ErrClosed = errors.New("waapi session closed")

// RemoteError is a WAMP ERROR reply. Message holds the human-readable text
// WAAPI puts in the error kwargs.
type RemoteError struct {
	URI     string
	Message string
	Details wamp.Dict
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return e.URI
	}
	return fmt.Sprintf("%s: %s", e.URI, e.Message)
}

func (e *RemoteError) RemoteMessage() string {
	return e.Message
}

func newRemoteError(reply *wamp.Error) *RemoteError {
	remote := &RemoteError{URI: string(reply.Error), Details: reply.ArgumentsKw}
	if message, ok := reply.ArgumentsKw["message"].(string); ok {
		remote.Message = message
	}
	return remote
}

func remoteErrorFrom(err error) *RemoteError {
	var rpcErr client.RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Err == nil {
		return nil
	}
	return newRemoteError(rpcErr.Err)
}
