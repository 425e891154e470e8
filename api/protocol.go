package api

import "prism-todo/domain"

const (
	postTaskMaxSize    = 16 * 1024 // 16 KiB
	postCommandMaxSize = 64 * 1024 // 64 KiB
)

// POST /api/tasks request body
type postTaskRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

// POST /api/commands and POST /api/import response body
type countResponse struct {
	Tasks int `json:"tasks"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type categoryView struct {
	Category string `json:"category"`
	Label    string `json:"label"`
}

type groupView struct {
	Category string        `json:"category"`
	Label    string        `json:"label"`
	Items    []domain.Task `json:"items"`
}

// GET /api/tasks response body
type tasksResponse struct {
	Tasks  []domain.Task `json:"tasks"`
	Groups []groupView   `json:"groups"`
}
