// Package session holds the one current task collection of a running editor
// and applies store operations and document round-trips to it.
package session

import (
	"bytes"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"prism-todo/codec"
	"prism-todo/domain"
)

// idObserver is implemented by generators that must skip ids already in use.
type idObserver interface {
	Observe(domain.ID)
}

// Session owns the current collection. Every operation replaces the
// collection with a fresh value; readers get copies.
type Session struct {
	mu      sync.Mutex
	tasks   domain.Collection
	ids     domain.IDGenerator
	decoder codec.Decoder
	log     *log.Logger
}

// New creates an empty session.
func New(ids domain.IDGenerator, decoder codec.Decoder, logger *log.Logger) *Session {
	if ids == nil {
		ids = domain.NewTimestampIDs()
	}
	if logger == nil {
		panic("Logger is not initialized")
	}
	return &Session{
		tasks:   domain.Collection{},
		ids:     ids,
		decoder: decoder,
		log:     logger,
	}
}

// Tasks returns a copy of the current collection.
func (s *Session) Tasks() domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ReplaceAll(nil, s.tasks)
}

// Groups returns the current collection split by category.
func (s *Session) Groups() []domain.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.GroupByCategory(s.tasks)
}

// Add appends a task and returns it. Blank titles and unknown categories
// leave the collection unchanged and are reported as domain.ErrEmptyTitle
// or domain.ErrUnknownCategory.
func (s *Session) Add(title string, category domain.Category) (domain.Task, error) {
	if err := domain.ValidateNew(title, category); err != nil {
		s.log.WithFields(log.Fields{"op": "add", "category": category}).Debugf("add ignored: %v", err)
		return domain.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = domain.Add(s.tasks, s.ids, title, category)
	task := s.tasks[len(s.tasks)-1]
	s.log.WithFields(log.Fields{"op": "add", "id": task.ID.String(), "category": category, "tasks": len(s.tasks)}).Info("task added")
	return task, nil
}

// Delete removes the task with id and reports whether anything was removed.
func (s *Session) Delete(id domain.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

// DeleteKey removes the task whose id text equals key, as received from a
// URL path or a form field.
func (s *Session) DeleteKey(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID.String() == key {
			return s.deleteLocked(t.ID)
		}
	}
	s.log.WithFields(log.Fields{"op": "delete", "id": key}).Debug("delete ignored: unknown id")
	return false
}

func (s *Session) deleteLocked(id domain.ID) bool {
	before := len(s.tasks)
	s.tasks = domain.Delete(s.tasks, id)
	removed := len(s.tasks) != before
	fields := log.Fields{"op": "delete", "id": id.String(), "tasks": len(s.tasks)}
	if removed {
		s.log.WithFields(fields).Info("task deleted")
	} else {
		s.log.WithFields(fields).Debug("delete ignored: unknown id")
	}
	return removed
}

// Apply folds cmds over the collection in order and returns the resulting
// task count.
func (s *Session) Apply(cmds []domain.Command) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = domain.ApplyAll(s.tasks, s.ids, cmds)
	s.observeLocked()
	s.log.WithFields(log.Fields{"op": "apply", "commands": len(cmds), "tasks": len(s.tasks)}).Info("commands applied")
	return len(s.tasks)
}

// Export renders the current collection as an export document.
func (s *Session) Export() ([]byte, error) {
	tasks := s.Tasks()
	data, err := codec.Export(tasks)
	if err != nil {
		s.log.WithField("op", "export").Errorf("export failed: %v", err)
		return nil, err
	}
	s.log.WithFields(log.Fields{"op": "export", "tasks": len(tasks), "bytes": len(data)}).Info("tasks exported")
	return data, nil
}

// Import replaces the collection with the document read from r. On any
// error the collection is left as it was.
func (s *Session) Import(r io.Reader) (int, error) {
	tasks, err := s.decoder.ImportReader(r)
	if err != nil {
		s.log.WithField("op", "import").Warnf("import refused: %v", err)
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = domain.ReplaceAll(s.tasks, tasks)
	s.observeLocked()
	s.log.WithFields(log.Fields{"op": "import", "tasks": len(s.tasks)}).Info("tasks imported")
	return len(s.tasks), nil
}

// observeLocked advances the id generator past every id in the collection.
func (s *Session) observeLocked() {
	obs, ok := s.ids.(idObserver)
	if !ok {
		return
	}
	for _, t := range s.tasks {
		obs.Observe(t.ID)
	}
}

// ImportBytes is Import for an in-memory document.
func (s *Session) ImportBytes(data []byte) (int, error) {
	if err := codec.CheckSize(int64(len(data))); err != nil {
		s.log.WithField("op", "import").Warnf("import refused: %v", err)
		return 0, err
	}
	return s.Import(bytes.NewReader(data))
}
