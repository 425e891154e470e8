package api

import (
	"io"

	"prism-todo/domain"
)

// Editor is the task session the handlers operate on.
type Editor interface {
	Tasks() domain.Collection
	Groups() []domain.Group
	Add(title string, category domain.Category) (domain.Task, error)
	DeleteKey(key string) bool
	Apply(cmds []domain.Command) int
	Export() ([]byte, error)
	Import(r io.Reader) (int, error)
}

// Options carries route level settings.
type Options struct {
	// ExportName is the file name offered for downloads.
	ExportName string
}
