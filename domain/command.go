package domain

const (
	CommandAdd    = "add"
	CommandDelete = "delete"
	CommandSet    = "set"
)

// Command represents a single change request against a collection.
type Command struct {
	Type     string     `json:"type"`
	ID       ID         `json:"id,omitempty"`
	Title    string     `json:"title,omitempty"`
	Category Category   `json:"category,omitempty"`
	Tasks    Collection `json:"tasks,omitempty"`
}

// Apply routes a command to the matching store operation. Unknown command
// types leave the collection unchanged.
func Apply(c Collection, ids IDGenerator, cmd Command) Collection {
	switch cmd.Type {
	case CommandAdd:
		return Add(c, ids, cmd.Title, cmd.Category)
	case CommandDelete:
		return Delete(c, cmd.ID)
	case CommandSet:
		return ReplaceAll(c, cmd.Tasks)
	default:
		return c
	}
}

// ApplyAll folds cmds over c in order.
func ApplyAll(c Collection, ids IDGenerator, cmds []Command) Collection {
	for _, cmd := range cmds {
		c = Apply(c, ids, cmd)
	}
	return c
}
