package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/example/task-tracker/domain/task"
)

//go:embed templates
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"date": func(d *task.Date) string {
		if d == nil {
			return ""
		}
		return d.String()
	},
	"datetime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"done": func(t task.Task) bool {
		return t.Done()
	},
	"selected": func(a, b any) bool {
		return toString(a) == toString(b)
	},
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case task.Priority:
		return string(s)
	case task.Status:
		return string(s)
	case interface{ String() string }:
		return s.String()
	}
	return ""
}
