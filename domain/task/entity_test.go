package task

import (
	"encoding/json"
	"errors"
	"strings"
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
		{"low", PriorityLow, false},
		{"medium", PriorityMedium, false},
		{"high", PriorityHigh, false},
		{"HIGH", "", true},
		{"urgent", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPriority) {
					t.Fatalf("ParsePriority(%q) error = %v, want ErrUnknownPriority", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePriority(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"", StatusOpen, false},
		{"open", StatusOpen, false},
		{"in_progress", StatusInProgress, false},
		{"done", StatusDone, false},
		{"closed", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStatus) {
					t.Fatalf("ParseStatus(%q) error = %v, want ErrUnknownStatus", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTask_Validate(t *testing.T) {
	valid := func() Task {
		return Task{OwnerID: "u-1", Title: "Ship report", Priority: PriorityMedium, Status: StatusOpen}
	}

	tests := []struct {
		name   string
		mutate func(*Task)
		want   error
	}{
		{name: "valid", mutate: func(*Task) {}},
		{name: "missing owner", mutate: func(t *Task) { t.OwnerID = "" }, want: ErrOwnerRequired},
		{name: "blank title", mutate: func(t *Task) { t.Title = "   " }, want: ErrTitleRequired},
		{name: "title at limit", mutate: func(t *Task) { t.Title = strings.Repeat("é", MaxTitleLength) }},
		{name: "title too long", mutate: func(t *Task) { t.Title = strings.Repeat("a", MaxTitleLength+1) }, want: ErrTitleTooLong},
		{name: "unknown priority", mutate: func(t *Task) { t.Priority = "urgent" }, want: ErrUnknownPriority},
		{name: "unknown status", mutate: func(t *Task) { t.Status = "closed" }, want: ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := valid()
			tt.mutate(&task)
			err := task.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTask_String(t *testing.T) {
	task := Task{Title: "Ship report", Status: StatusInProgress}
	if got := task.String(); got != "Ship report (In progress)" {
		t.Errorf("String() = %q", got)
	}
}

func TestLabels(t *testing.T) {
	for _, p := range Priorities() {
		if p.Label() == string(p) {
			t.Errorf("priority %q has no label", p)
		}
	}
	for _, s := range Statuses() {
		if s.Label() == string(s) {
			t.Errorf("status %q has no label", s)
		}
	}
}

func TestDate_JSON(t *testing.T) {
	in := struct {
		Due *Date `json:"due"`
	}{Due: ptr(NewDate(2024, time.March, 9))}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"due":"2024-03-09"}` {
		t.Fatalf("Marshal() = %s", data)
	}

	var out struct {
		Due *Date `json:"due"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out.Due == nil || !out.Due.Equal(in.Due.Time) {
		t.Errorf("Unmarshal() = %v, want %v", out.Due, in.Due)
	}

	if err := json.Unmarshal([]byte(`{"due":"09/03/2024"}`), &out); err == nil {
		t.Error("Unmarshal() accepted a non ISO date")
	}
}

func TestDate_Scan(t *testing.T) {
	want := NewDate(2024, time.March, 9)

	tests := []struct {
		name string
		src  any
	}{
		{"time", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"string", "2024-03-09"},
		{"bytes", []byte("2024-03-09")},
		{"timestamp text", "2024-03-09 00:00:00+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if !d.Equal(want.Time) {
				t.Errorf("Scan() = %v, want %v", d, want)
			}
		})
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) expected error")
	}
}

func ptr[T any](v T) *T {
	return &v
}
