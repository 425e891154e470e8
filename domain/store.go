package domain

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyTitle is reported when a title is blank after trimming.
	ErrEmptyTitle = errors.New("task title is empty")
	// ErrUnknownCategory is reported for a category outside the fixed set.
	ErrUnknownCategory = errors.New("unknown task category")
)

// ValidateNew reports why Add would ignore the given input, or nil if it
// would append a task.
func ValidateNew(title string, category Category) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if !category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}

// Add returns a new collection with a task appended. Input that fails
// ValidateNew leaves the collection unchanged. The title is stored as typed.
func Add(c Collection, ids IDGenerator, title string, category Category) Collection {
	if ValidateNew(title, category) != nil {
		return c
	}
	out := make(Collection, len(c), len(c)+1)
	copy(out, c)
	return append(out, Task{ID: ids.Next(), Title: title, Category: category})
}

// Delete returns a new collection without the tasks carrying id. An unknown
// id leaves the collection unchanged.
func Delete(c Collection, id ID) Collection {
	idx := -1
	for i := range c {
		if c[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return c
	}
	out := make(Collection, 0, len(c)-1)
	out = append(out, c[:idx]...)
	for _, t := range c[idx+1:] {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// ReplaceAll discards c and adopts tasks as they are. Ids and categories are
// not checked.
func ReplaceAll(_ Collection, tasks Collection) Collection {
	out := make(Collection, len(tasks))
	copy(out, tasks)
	return out
}

// Group holds the tasks filed under one category.
type Group struct {
	Category Category `json:"category"`
	Items    []Task   `json:"items"`
}

// GroupByCategory splits c into one group per fixed category, in category
// order. Every category is present even when it has no tasks. Tasks with a
// category outside the fixed set are left out.
func GroupByCategory(c Collection) []Group {
	groups := make([]Group, len(categories))
	for i, cat := range categories {
		groups[i] = Group{Category: cat, Items: []Task{}}
	}
	for _, t := range c {
		for i := range groups {
			if groups[i].Category == t.Category {
				groups[i].Items = append(groups[i].Items, t)
				break
			}
		}
	}
	return groups
}
