package domain

import "fmt"

type ObjectID string

// Object is the id/name/type triple WAAPI returns for project objects.
type Object struct {
	ID   ObjectID `json:"id"`
	Name string   `json:"name"`
	Type string   `json:"type"`
}

func (o Object) Label() string {
	return fmt.Sprintf("%s | %s", o.Name, o.Type)
}

// Selection tracks the single object used as the creation parent.
type Selection struct {
	Object Object
}

func (s Selection) Empty() bool {
	return s.Object.ID == ""
}

// Apply adopts objects[0] when exactly one object is selected. Any other
// count leaves the selection unchanged.
func (s Selection) Apply(objects []Object) (Selection, bool) {
	if len(objects) != 1 {
		return s, false
	}

	return Selection{Object: objects[0]}, true
}

// ToolInfo describes the authoring tool on the other end of the session.
type ToolInfo struct {
	DisplayName string
	Version     string
	Platform    string
}

func (i ToolInfo) String() string {
	name := i.DisplayName
	if name == "" {
		name = "Wwise"
	}
	if i.Version == "" {
		return name
	}
	return name + " " + i.Version
}
