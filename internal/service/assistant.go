package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/atinyakov/JobTracker/internal/models"
)

const (
	maxMessageLen = 4000
	maxHistory    = 20
)

// Generator produces a completion for a prompt. Implementations talk to an
// external language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AssistantService answers questions about one application by sending its
// context to a Generator. Nothing about the exchange is stored.
type AssistantService struct {
	apps         ApplicationRepository
	deliverables DeliverableRepository
	writing      WritingRepository
	gen          Generator
	timeout      time.Duration
}

// NewAssistantService constructs an AssistantService. timeout bounds each
// Generator call.
func NewAssistantService(apps ApplicationRepository, deliverables DeliverableRepository, writing WritingRepository, gen Generator, timeout time.Duration) *AssistantService {
	return &AssistantService{
		apps:         apps,
		deliverables: deliverables,
		writing:      writing,
		gen:          gen,
		timeout:      timeout,
	}
}

const systemPrompt = `You are a job application assistant. The context below describes one job
application the user is tracking: the company, the role, its current status, the user's
notes, the deliverables still due and the writing the user has drafted. Use it to give
specific, practical advice. If the context does not contain the answer, say so plainly
instead of guessing.`

var contextTemplate = template.Must(template.New("context").Funcs(template.FuncMap{"join": strings.Join}).Parse(`## Application
Company: {{.App.Company}}
{{- with .App.Role}}
Role: {{.}}{{end}}
Status: {{.App.Status}}
{{- with .App.Link}}
Link: {{.}}{{end}}
{{- with .App.DueDate}}
Due: {{.Format "2006-01-02"}}{{end}}
{{- with .App.SubmittedDate}}
Submitted: {{.Format "2006-01-02"}}{{end}}
{{- with .App.Notes}}
Notes: {{.}}{{end}}

## Deliverables
{{- range .Deliverables}}
- [{{if .Completed}}x{{else}} {{end}}] ({{.Kind}}, {{.State}}) {{.Description}}{{with .DueDate}} due {{.Format "2006-01-02"}}{{end}}
{{- with .Content}}
  Draft:
{{.}}{{end}}
{{- else}}
(none){{end}}

## Writing
{{- range .Writing}}
### {{if .Title}}{{.Title}}{{else}}Untitled{{end}}
{{- with .Tags}}
Tags: {{join . ", "}}{{end}}
{{.Content}}
{{- else}}
(none){{end}}
`))

type promptContext struct {
	App          *models.Application
	Deliverables []models.Deliverable
	Writing      []models.WritingNote
}

// Ask loads the application's context and relays message to the generator.
// All database reads complete before the upstream call starts. Generator
// failures are wrapped in models.ErrUpstream.
func (s *AssistantService) Ask(ctx context.Context, userID, applicationID, message string, history []models.ChatTurn) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", models.ErrInvalidInput)
	}
	if len(message) > maxMessageLen {
		return "", fmt.Errorf("%w: message exceeds %d characters", models.ErrInvalidInput, maxMessageLen)
	}
	if err := requireApplicationID(applicationID); err != nil {
		return "", err
	}

	app, err := s.apps.GetApplication(ctx, userID, applicationID)
	if err != nil {
		return "", err
	}
	deliverables, err := s.deliverables.ListDeliverables(ctx, userID, applicationID)
	if err != nil {
		return "", err
	}
	notes, err := s.writing.ListWritingNotes(ctx, userID, models.WritingFilter{ApplicationID: applicationID})
	if err != nil {
		return "", err
	}

	prompt, err := buildPrompt(promptContext{App: app, Deliverables: deliverables, Writing: notes}, history, message)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.gen.Generate(callCtx, prompt)
	if err != nil {
		if errors.Is(err, models.ErrUpstream) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", models.ErrUpstream)
	}
	return reply, nil
}

func buildPrompt(pc promptContext, history []models.ChatTurn, message string) (string, error) {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	if err := contextTemplate.Execute(&b, pc); err != nil {
		return "", fmt.Errorf("render context: %w", err)
	}

	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	if len(history) > 0 {
		b.WriteString("\n## Conversation so far\n")
		for _, turn := range history {
			content := strings.TrimSpace(turn.Content)
			if content == "" {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker(turn.Role), content)
		}
	}

	b.WriteString("\nUser: ")
	b.WriteString(message)
	b.WriteString("\nAssistant:")
	return b.String(), nil
}

func speaker(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), "assistant") {
		return "Assistant"
	}
	return "User"
}
