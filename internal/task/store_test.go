package task

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type memKV struct {
	data   map[string]string
	setErr error
	getErr error
	sets   int
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	return nil
}

func openTestStore(t *testing.T, kv KV, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock{testNow})}, opts...)
	s, err := Open(kv, opts...)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func storedTasks(t *testing.T, kv *memKV, key string) []Task {
	t.Helper()
	var tasks []Task
	if err := json.Unmarshal([]byte(kv.data[key]), &tasks); err != nil {
		t.Fatalf("stored value is not a task array: %v", err)
	}
	return tasks
}

func TestAddDefaults(t *testing.T) {
	kv := newMemKV()
	s := openTestStore(t, kv)

	got, err := s.Add(Input{Text: "  Buy milk  "})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got.Text != "Buy milk" {
		t.Errorf("Text: got %q, want %q", got.Text, "Buy milk")
	}
	if got.Completed {
		t.Error("new task should not be completed")
	}
	if got.DueDate != "2026-03-14" {
		t.Errorf("DueDate: got %q, want 2026-03-14", got.DueDate)
	}
	if got.Priority != PriorityMedium {
		t.Errorf("Priority: got %q, want medium", got.Priority)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("Tags: got %#v, want empty non-nil", got.Tags)
	}
	if got.AddedDate != "2026-03-14T09:30:00.000Z" {
		t.Errorf("AddedDate: got %q", got.AddedDate)
	}
	if got.ID == "" {
		t.Error("ID should be set")
	}
}

func TestAddKeepsInput(t *testing.T) {
	s := openTestStore(t, newMemKV())

	got, err := s.Add(Input{Text: "Report", DueDate: "2026-04-01", Priority: "High", Tags: "work, ,urgent,work"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got.DueDate != "2026-04-01" {
		t.Errorf("DueDate: got %q", got.DueDate)
	}
	if got.Priority != PriorityHigh {
		t.Errorf("Priority: got %q, want high", got.Priority)
	}
	want := []string{"work", "urgent", "work"}
	if !reflect.DeepEqual(got.Tags, want) {
		t.Errorf("Tags: got %v, want %v", got.Tags, want)
	}
}

func TestAddGrowsByOne(t *testing.T) {
	s := openTestStore(t, newMemKV())
	for i, text := range []string{"a", "b c", " d ", "ünïcode"} {
		if _, err := s.Add(Input{Text: text}); err != nil {
			t.Fatalf("Add(%q) failed: %v", text, err)
		}
		if got := len(s.Tasks()); got != i+1 {
			t.Fatalf("after Add(%q): len = %d, want %d", text, got, i+1)
		}
		if s.Tasks()[i].Completed {
			t.Errorf("Add(%q) produced a completed task", text)
		}
	}
}

func TestAddRejectsEmptyText(t *testing.T) {
	kv := newMemKV()
	s := openTestStore(t, kv)
	if _, err := s.Add(Input{Text: "keep"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	sets := kv.sets

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := s.Add(Input{Text: text})
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("Add(%q): got %v, want ErrEmptyText", text, err)
		}
	}
	if got := len(s.Tasks()); got != 1 {
		t.Errorf("collection size: got %d, want 1", got)
	}
	if kv.sets != sets {
		t.Errorf("rejected add should not save")
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	s := openTestStore(t, newMemKV())
	added, _ := s.Add(Input{Text: "flip"})

	first, err := s.Toggle(added.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !first.Completed {
		t.Error("first toggle should complete the task")
	}
	second, err := s.Toggle(added.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if second.Completed != added.Completed {
		t.Errorf("double toggle: got %v, want %v", second.Completed, added.Completed)
	}
}

func TestUnknownID(t *testing.T) {
	s := openTestStore(t, newMemKV())
	if _, err := s.Toggle("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Toggle: got %v, want ErrNotFound", err)
	}
	if err := s.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: got %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesOnlyTarget(t *testing.T) {
	s := openTestStore(t, newMemKV())
	a, _ := s.Add(Input{Text: "a"})
	b, _ := s.Add(Input{Text: "b"})
	c, _ := s.Add(Input{Text: "c"})

	if err := s.Delete(b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got := s.Tasks()
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != c.ID {
		t.Errorf("after delete: got %+v", got)
	}
}

func TestClearCompletedIdempotent(t *testing.T) {
	kv := newMemKV()
	s := openTestStore(t, kv)
	ids := make([]string, 0, 4)
	for _, text := range []string{"a", "b", "c", "d"} {
		task, _ := s.Add(Input{Text: text})
		ids = append(ids, task.ID)
	}
	s.Toggle(ids[1])
	s.Toggle(ids[3])

	removed, err := s.ClearCompleted()
	if err != nil {
		t.Fatalf("ClearCompleted failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed: got %d, want 2", removed)
	}
	once := s.Tasks()

	removed, err = s.ClearCompleted()
	if err != nil {
		t.Fatalf("ClearCompleted failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("second clear removed %d", removed)
	}
	if !reflect.DeepEqual(once, s.Tasks()) {
		t.Errorf("second clear changed the collection")
	}
	if got := storedTasks(t, kv, DefaultKey); len(got) != 2 || got[0].Text != "a" || got[1].Text != "c" {
		t.Errorf("stored after clear: %+v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	kv := newMemKV()
	s := openTestStore(t, kv)
	s.Add(Input{Text: "one", DueDate: "2026-05-01", Priority: "low", Tags: "x,y"})
	two, _ := s.Add(Input{Text: "two", Priority: "high"})
	s.Add(Input{Text: "three"})
	s.Toggle(two.ID)

	reopened := openTestStore(t, kv)
	if !reflect.DeepEqual(s.Tasks(), reopened.Tasks()) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", reopened.Tasks(), s.Tasks())
	}
}

func TestStoredSnapshotFields(t *testing.T) {
	kv := newMemKV()
	s := openTestStore(t, kv)
	s.Add(Input{Text: "fields", Tags: "a"})

	var raw []map[string]any
	if err := json.Unmarshal([]byte(kv.data[DefaultKey]), &raw); err != nil {
		t.Fatalf("decode stored value: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("stored records: got %d, want 1", len(raw))
	}
	for _, field := range []string{"id", "text", "completed", "dueDate", "priority", "tags", "addedDate"} {
		if _, ok := raw[0][field]; !ok {
			t.Errorf("stored record missing %q", field)
		}
	}
}

func TestCustomKey(t *testing.T) {
	kv := newMemKV()
	s := openTestStore(t, kv, WithKey("work-tasks"))
	s.Add(Input{Text: "scoped"})

	if s.Key() != "work-tasks" {
		t.Errorf("Key: got %q", s.Key())
	}
	if _, ok := kv.data[DefaultKey]; ok {
		t.Error("default key should be untouched")
	}
	if len(storedTasks(t, kv, "work-tasks")) != 1 {
		t.Error("custom key should hold the task")
	}
}

func TestLoadLegacyRecords(t *testing.T) {
	kv := newMemKV()
	kv.data[DefaultKey] = `[{"text":"old","completed":true},{"text":"older","completed":false,"priority":"urgent","tags":null}]`

	s := openTestStore(t, kv)
	got := s.Tasks()
	if len(got) != 2 {
		t.Fatalf("loaded %d tasks, want 2", len(got))
	}
	for _, task := range got {
		if task.ID == "" {
			t.Errorf("%q: missing id", task.Text)
		}
		if task.DueDate != "2026-03-14" {
			t.Errorf("%q: DueDate %q", task.Text, task.DueDate)
		}
		if task.Priority != PriorityMedium {
			t.Errorf("%q: Priority %q", task.Text, task.Priority)
		}
		if task.Tags == nil || len(task.Tags) != 0 {
			t.Errorf("%q: Tags %#v", task.Text, task.Tags)
		}
		if task.AddedDate == "" {
			t.Errorf("%q: missing addedDate", task.Text)
		}
	}
	if !got[0].Completed || got[1].Completed {
		t.Error("completed flags not preserved")
	}
}

func TestLoadMalformedYieldsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not json", "{{{"},
		{"object", `{"text":"x"}`},
		{"blank", "   "},
		{"wrong types", `[{"text":5}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemKV()
			kv.data[DefaultKey] = tt.value
			s, err := Open(kv)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if len(s.Tasks()) != 0 {
				t.Errorf("got %d tasks, want 0", len(s.Tasks()))
			}
		})
	}
}

func TestLoadBackendError(t *testing.T) {
	kv := newMemKV()
	kv.getErr = errors.New("disk on fire")
	if _, err := Open(kv); err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Open: got %v, want backend error", err)
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	kv := newMemKV()
	s := openTestStore(t, kv)
	kv.setErr = errors.New("read-only")

	task, err := s.Add(Input{Text: "survives"})
	if err == nil {
		t.Fatal("Add should report the save failure")
	}
	if len(s.Tasks()) != 1 || s.Tasks()[0].ID != task.ID {
		t.Errorf("in-memory add should stand, got %+v", s.Tasks())
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t, newMemKV())
	a, _ := s.Add(Input{Text: "a"})
	s.Add(Input{Text: "b"})
	s.Add(Input{Text: "c"})
	s.Toggle(a.ID)

	want := Stats{Total: 3, Completed: 1, Pending: 2}
	if got := s.Stats(); got != want {
		t.Errorf("Stats: got %+v, want %+v", got, want)
	}
}

func TestOnChangeAfterEachMutation(t *testing.T) {
	var seen []Stats
	s := openTestStore(t, newMemKV(), WithOnChange(func(st Stats) { seen = append(seen, st) }))

	a, _ := s.Add(Input{Text: "a"})
	s.Add(Input{Text: ""})
	s.Toggle(a.ID)
	s.ClearCompleted()

	want := []Stats{
		{Total: 1, Completed: 0, Pending: 1},
		{Total: 1, Completed: 1, Pending: 0},
		{Total: 0, Completed: 0, Pending: 0},
	}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("notifications: got %+v, want %+v", seen, want)
	}
}

func TestResolve(t *testing.T) {
	kv := newMemKV()
	kv.data[DefaultKey] = `[
		{"id":"abc111","text":"one","completed":false},
		{"id":"abc222","text":"two","completed":false},
		{"id":"def333","text":"three","completed":false}
	]`
	s := openTestStore(t, kv)

	tests := []struct {
		ref     string
		want    string
		wantErr error
	}{
		{ref: "abc111", want: "one"},
		{ref: "def", want: "three"},
		{ref: "abc2", want: "two"},
		{ref: "abc", wantErr: ErrAmbiguous},
		{ref: "zzz", wantErr: ErrNotFound},
		{ref: "  ", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := s.Resolve(tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got.Text != tt.want {
				t.Errorf("got %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestTasksReturnsCopies(t *testing.T) {
	s := openTestStore(t, newMemKV())
	s.Add(Input{Text: "orig", Tags: "a"})

	got := s.Tasks()
	got[0].Text = "changed"
	got[0].Tags[0] = "changed"

	again := s.Tasks()
	if again[0].Text != "orig" || again[0].Tags[0] != "a" {
		t.Errorf("collection was mutated through a copy: %+v", again[0])
	}
}

func TestEndToEndBuyMilk(t *testing.T) {
	kv := newMemKV()
	s := openTestStore(t, kv)

	milk, err := s.Add(Input{Text: "Buy milk"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if all := s.FilterAndSort(Query{Status: StatusAll}); len(all) != 1 || all[0].Text != "Buy milk" {
		t.Fatalf("status=all: got %+v", all)
	}

	if _, err := s.Toggle(milk.ID); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if active := s.FilterAndSort(Query{Status: StatusActive}); len(active) != 0 {
		t.Errorf("status=active: got %+v, want none", active)
	}
	if done := s.FilterAndSort(Query{Status: StatusCompleted}); len(done) != 1 {
		t.Errorf("status=completed: got %+v, want milk", done)
	}

	if err := s.Delete(milk.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(s.Tasks()) != 0 {
		t.Errorf("collection not empty after delete")
	}
	if kv.data[DefaultKey] != "[]" {
		t.Errorf("stored value: got %q, want []", kv.data[DefaultKey])
	}
}
