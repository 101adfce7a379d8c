// Package narrator turns the guardian's decisions into readable text.
package narrator

import (
	"bytes"
	"context"
	"embed"
	"text/template"

	"github.com/tatianab/dungeon-guardian/internal/catalog"
	"github.com/tatianab/dungeon-guardian/internal/goals"
	"github.com/tatianab/dungeon-guardian/internal/models"
)

//go:embed templates/narration.tmpl
var templateFS embed.FS

var narration = template.Must(template.ParseFS(templateFS, "templates/narration.tmpl"))

type narrationData struct {
	State    models.WorldState
	Goal     string
	Action   string
	Reason   string
	Failures int
}

// Template narrates from fixed templates. Its output depends only on its
// arguments.
type Template struct{}

func NewTemplate() Template { return Template{} }

func (Template) DescribeGoal(_ context.Context, s models.WorldState, g goals.Goal) string {
	return render("goal", narrationData{State: s, Goal: g.String()})
}

func (Template) DescribeAction(_ context.Context, s models.WorldState, id catalog.ActionID) string {
	return render("action", narrationData{State: s, Action: string(id)})
}

// ReflectOnFailure writes a reflection on a failed action and records it in
// mem, which may be nil.
func (Template) ReflectOnFailure(_ context.Context, s models.WorldState, id catalog.ActionID, reason string, step int, mem *Memory) string {
	failures := 1
	if mem != nil {
		failures += mem.Len()
	}
	text := render("reflect", narrationData{State: s, Action: string(id), Reason: reason, Failures: failures})
	remember(mem, step, id, reason, text)
	return text
}

func remember(mem *Memory, step int, id catalog.ActionID, reason, text string) {
	if mem == nil {
		return
	}
	mem.Add(Entry{Step: step, Action: string(id), Reason: reason, Reflection: text})
}

func render(name string, data narrationData) string {
	var buf bytes.Buffer
	if err := narration.ExecuteTemplate(&buf, name, data); err != nil {
		return err.Error()
	}
	return buf.String()
}
