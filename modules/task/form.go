package task

import (
	"strings"

	domain "github.com/example/task-tracker/domain/task"
	"github.com/example/task-tracker/pkg/validation"
)

// Form is the submitted task form. It has no owner field: the owner always
// comes from the authenticated requester.
type Form struct {
	Title       string `json:"title" form:"title" validate:"notblank,max=200"`
	Description string `json:"description" form:"description"`
	Priority    string `json:"priority" form:"priority" validate:"required,oneof=low medium high"`
	Status      string `json:"status" form:"status" validate:"required,oneof=open in_progress done"`
	DueDate     string `json:"due_date" form:"due_date"`
}

// FormFrom fills a form with the current values of t, for edit pages.
func FormFrom(t *domain.Task) Form {
	f := Form{
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
	}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.String()
	}
	return f
}

// Cleaned holds the parsed values of a valid form.
type Cleaned struct {
	Title       string
	Description string
	Priority    domain.Priority
	Status      domain.Status
	DueDate     *domain.Date
}

// WithDefaults fills an empty priority or status with its default. Only new
// tasks get defaults; an edit must submit both.
func (f Form) WithDefaults() Form {
	if strings.TrimSpace(f.Priority) == "" {
		f.Priority = string(domain.DefaultPriority)
	}
	if strings.TrimSpace(f.Status) == "" {
		f.Status = string(domain.DefaultStatus)
	}
	return f
}

// Clean validates the form and converts it to typed values.
func (f Form) Clean() (Cleaned, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.DueDate = strings.TrimSpace(f.DueDate)

	fields := validation.Struct(f)
	if fields == nil {
		fields = map[string]string{}
	}

	var out Cleaned
	out.Title = f.Title
	out.Description = strings.TrimSpace(f.Description)

	if _, bad := fields["priority"]; !bad {
		p, err := domain.ParsePriority(f.Priority)
		if err != nil {
			fields["priority"] = err.Error()
		}
		out.Priority = p
	}
	if _, bad := fields["status"]; !bad {
		s, err := domain.ParseStatus(f.Status)
		if err != nil {
			fields["status"] = err.Error()
		}
		out.Status = s
	}
	if f.DueDate != "" {
		d, err := domain.ParseDate(f.DueDate)
		if err != nil {
			fields["due_date"] = "Enter a valid date."
		} else {
			out.DueDate = &d
		}
	}

	if len(fields) > 0 {
		return Cleaned{}, &ValidationError{Fields: fields}
	}
	return out, nil
}
