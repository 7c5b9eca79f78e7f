package domain

import "errors"

var (
	ErrNotConnected = errors.New("not connected to wwise")
	ErrNoParent     = errors.New("no parent object selected")
	ErrNoNames      = errors.New("no object names given")
	ErrUnknownType  = errors.New("unknown object type")
)
