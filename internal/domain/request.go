package domain

import (
	"fmt"
	"strings"
)

type NameConflict string

const (
	NameConflictDefault NameConflict = ""
	NameConflictFail    NameConflict = "fail"
	NameConflictRename  NameConflict = "rename"
	NameConflictReplace NameConflict = "replace"
	NameConflictMerge   NameConflict = "merge"
)

func (n NameConflict) Validate() error {
	switch n {
	case NameConflictDefault, NameConflictFail, NameConflictRename, NameConflictReplace, NameConflictMerge:
		return nil
	default:
		return fmt.Errorf("unsupported name conflict policy %q", string(n))
	}
}

// CreationRequest is the payload of one ak.wwise.core.object.create call.
type CreationRequest struct {
	Parent         ObjectID
	Type           string
	Name           string
	Properties     map[string]bool
	OnNameConflict NameConflict
}

// BatchRequest is what the user submits from the form or the create command.
type BatchRequest struct {
	Names          []string
	Parent         ObjectID
	Type           string
	IsVoice        bool
	IsRandom       bool
	OnNameConflict NameConflict
}

// Requests expands the batch into one request per name, in input order.
func (b BatchRequest) Requests() []CreationRequest {
	requests := make([]CreationRequest, 0, len(b.Names))
	for _, name := range b.Names {
		requests = append(requests, CreationRequest{
			Parent:         b.Parent,
			Type:           b.Type,
			Name:           name,
			Properties:     b.properties(),
			OnNameConflict: b.OnNameConflict,
		})
	}
	return requests
}

func (b BatchRequest) properties() map[string]bool {
	switch b.Type {
	case TypeSound:
		return map[string]bool{PropertyIsVoice: b.IsVoice}
	case TypeRandomSequenceContainer:
		return map[string]bool{PropertyRandomOrSequence: b.IsRandom}
	default:
		return nil
	}
}

// ParseNames splits user input into trimmed, non-blank object names.
func ParseNames(text string) []string {
	return NormalizeNames(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

// NormalizeNames trims every name and drops the blank ones.
func NormalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
