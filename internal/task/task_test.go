package task

import (
	"reflect"
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"", PriorityMedium, false},
		{"high", PriorityHigh, false},
		{" HIGH ", PriorityHigh, false},
		{"h", PriorityHigh, false},
		{"med", PriorityMedium, false},
		{"Low", PriorityLow, false},
		{"critical", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityHigh.Rank() > PriorityMedium.Rank() && PriorityMedium.Rank() > PriorityLow.Rank()) {
		t.Error("rank order should be high > medium > low")
	}
	if Priority("bogus").Rank() != 0 {
		t.Error("unknown priority should rank 0")
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"", StatusAll, false},
		{"all", StatusAll, false},
		{"Completed", StatusCompleted, false},
		{"done", StatusCompleted, false},
		{"active", StatusActive, false},
		{"pending", StatusActive, false},
		{"archived", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"", SortNone, false},
		{"none", SortNone, false},
		{"dueDate", SortDueDate, false},
		{"due", SortDueDate, false},
		{"priority", SortPriority, false},
		{"added", SortAdded, false},
		{"alpha", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortKey(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSortKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSortKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{" a , b ,, a ", []string{"a", "b", "a"}},
		{" , ", []string{}},
	}
	for _, tt := range tests {
		got := ParseTags(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTags(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestClampDueDate(t *testing.T) {
	const today = "2026-03-14"
	tests := []struct {
		in   string
		want string
	}{
		{"", today},
		{"2026-03-13", today},
		{"2025-12-31", today},
		{today, today},
		{"2026-03-15", "2026-03-15"},
		{"next week", "next week"},
	}
	for _, tt := range tests {
		if got := ClampDueDate(tt.in, today); got != tt.want {
			t.Errorf("ClampDueDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("east", 10*60*60)
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC).In(loc)
	if got := Today(now); got != "2026-03-15" {
		t.Errorf("Today = %q, want 2026-03-15", got)
	}
	if got := Timestamp(now); got != "2026-03-14T20:00:00.000Z" {
		t.Errorf("Timestamp = %q, want UTC", got)
	}
}

func TestHasTag(t *testing.T) {
	task := Task{Tags: []string{"Work", "home"}}
	if !task.HasTag("work") || !task.HasTag(" HOME ") {
		t.Error("HasTag should ignore case and whitespace")
	}
	if task.HasTag("errand") {
		t.Error("HasTag matched a missing tag")
	}
}
