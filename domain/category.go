package domain

import "strings"

// Category is one of the four fixed quadrants a task is filed under.
type Category string

const (
	ImportantUrgent       Category = "important-&-urgent"
	ImportantNotUrgent    Category = "important-&-not-urgent"
	NotImportantUrgent    Category = "not-important-&-urgent"
	NotImportantNotUrgent Category = "not-important-&-not-urgent"
)

var categories = [...]Category{
	ImportantUrgent,
	ImportantNotUrgent,
	NotImportantUrgent,
	NotImportantNotUrgent,
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories[:])
	return out
}

// Valid reports whether c is a member of the fixed category set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// DisplayName turns a category slug into a title-cased label,
// e.g. "important-&-urgent" becomes "Important & Urgent".
func (c Category) DisplayName() string {
	words := strings.Split(string(c), "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		first := w[0]
		if first >= 'a' && first <= 'z' {
			words[i] = string(first-'a'+'A') + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (c Category) String() string { return string(c) }
