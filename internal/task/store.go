package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/todo-go/internal/logging"
)

var (
	// ErrEmptyText is returned when a task is added without text.
	ErrEmptyText = errors.New("please enter a task")
	// ErrNotFound is returned when no task matches a reference.
	ErrNotFound = errors.New("task not found")
	// ErrAmbiguous is returned when an id prefix matches several tasks.
	ErrAmbiguous = errors.New("ambiguous task reference")
)

// KV is the durable key-value storage the Store persists into.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	// Set overwrites the value for key.
	Set(key, value string) error
}

// Stats summarizes the collection.
type Stats struct {
	Total     int `json:"total" yaml:"total"`
	Completed int `json:"completed" yaml:"completed"`
	Pending   int `json:"pending" yaml:"pending"`
}

// Store holds the task collection in insertion order and mirrors it to a KV
// entry after every mutation.
type Store struct {
	kv       KV
	key      string
	tasks    []Task
	clock    Clock
	logger   *log.Logger
	onChange func(Stats)
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key. Empty keys are ignored.
func WithKey(key string) Option {
	return func(s *Store) {
		if key = strings.TrimSpace(key); key != "" {
			s.key = key
		}
	}
}

// WithClock sets the time source used for defaults.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnChange registers fn to run with fresh stats after every mutation.
func WithOnChange(fn func(Stats)) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

// Open creates a Store over kv and loads any saved tasks.
func Open(kv KV, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("task store: nil storage")
	}
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		tasks:  []Task{},
		clock:  systemClock{},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetOnChange replaces the mutation listener. nil removes it.
func (s *Store) SetOnChange(fn func(Stats)) {
	s.onChange = fn
}

// Key returns the storage key in use.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the collection with the saved snapshot. A missing or
// undecodable entry leaves the collection empty.
func (s *Store) Load() error {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		return fmt.Errorf("read %q: %w", s.key, err)
	}
	s.tasks = []Task{}
	if !ok || strings.TrimSpace(raw) == "" {
		s.logger.Debug("no saved tasks", "key", s.key)
		return nil
	}

	tasks, err := Decode([]byte(raw), s.clock)
	if err != nil {
		s.logger.Warn("ignoring unreadable saved tasks", "key", s.key, "err", err)
		return nil
	}
	s.tasks = tasks
	s.logger.Debug("loaded tasks", "key", s.key, "count", len(tasks))
	return nil
}

// Save writes the full collection to the storage key.
func (s *Store) Save() error {
	data, err := Encode(s.tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("write %q: %w", s.key, err)
	}
	return nil
}

// Add appends a task built from in. Text is required.
func (s *Store) Add(in Input) (Task, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Task{}, ErrEmptyText
	}

	now := s.clock.Now()
	t := Task{
		ID:        uuid.NewString(),
		Text:      text,
		Completed: false,
		DueDate:   strings.TrimSpace(in.DueDate),
		Priority:  normalizePriority(in.Priority),
		Tags:      ParseTags(in.Tags),
		AddedDate: Timestamp(now),
	}
	if t.DueDate == "" {
		t.DueDate = Today(now)
	}

	s.tasks = append(s.tasks, t)
	s.logger.Debug("task added", "id", t.ID, "text", t.Text)
	return t.clone(), s.commit("add")
}

// Toggle flips the completed flag of the task with id.
func (s *Store) Toggle(id string) (Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, fmt.Errorf("toggle %q: %w", id, ErrNotFound)
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.logger.Debug("task toggled", "id", id, "completed", s.tasks[i].Completed)
	return s.tasks[i].clone(), s.commit("toggle")
}

// Delete removes the task with id.
func (s *Store) Delete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.logger.Debug("task deleted", "id", id)
	return s.commit("delete")
}

// ClearCompleted removes every completed task and returns how many went.
func (s *Store) ClearCompleted() (int, error) {
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	// zero the tail so removed tasks are not retained by the backing array
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = Task{}
	}
	s.tasks = kept
	s.logger.Debug("completed tasks cleared", "removed", removed)
	return removed, s.commit("clear-completed")
}

// Resolve finds a task by full id or unique id prefix.
func (s *Store) Resolve(ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Task{}, ErrNotFound
	}
	if i := s.indexOf(ref); i >= 0 {
		return s.tasks[i].clone(), nil
	}

	match := -1
	for i := range s.tasks {
		if strings.HasPrefix(s.tasks[i].ID, ref) {
			if match >= 0 {
				return Task{}, fmt.Errorf("%q: %w", ref, ErrAmbiguous)
			}
			match = i
		}
	}
	if match < 0 {
		return Task{}, fmt.Errorf("%q: %w", ref, ErrNotFound)
	}
	return s.tasks[match].clone(), nil
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}
	return out
}

// Stats counts total, completed and pending tasks.
func (s *Store) Stats() Stats {
	st := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

// FilterAndSort derives a view of the collection without changing it.
func (s *Store) FilterAndSort(q Query) []Task {
	return FilterAndSort(s.tasks, q)
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// commit persists after a mutation and notifies the listener. The in-memory
// change stands even when the write fails.
func (s *Store) commit(op string) error {
	err := s.Save()
	if err != nil {
		s.logger.Error("save failed", "op", op, "err", err)
	}
	if s.onChange != nil {
		s.onChange(s.Stats())
	}
	return err
}

// Encode serializes tasks as the stored JSON array.
func Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	return json.Marshal(tasks)
}

// Decode parses a stored JSON array and fills defaults for records that
// lack newer fields.
func Decode(data []byte, clock Clock) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if clock == nil {
		clock = systemClock{}
	}
	now := clock.Now()
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.DueDate == "" {
			t.DueDate = Today(now)
		}
		t.Priority = normalizePriority(string(t.Priority))
		if t.Tags == nil {
			t.Tags = []string{}
		}
		if t.AddedDate == "" {
			t.AddedDate = Timestamp(now)
		}
		out = append(out, t)
	}
	return out, nil
}
