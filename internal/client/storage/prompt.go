package storage

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/JobTracker/internal/models"
)

// Prompter asks questions on out and reads answers line by line from in.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
	eof     bool
}

// NewPrompter builds a Prompter.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Ask prints question and returns the trimmed answer. It returns "" on EOF.
func (p *Prompter) Ask(question string) string {
	fmt.Fprint(p.out, question)
	if !p.scanner.Scan() {
		p.eof = true
		return ""
	}
	return strings.TrimSpace(p.scanner.Text())
}

// More reports whether input may still have lines to read.
func (p *Prompter) More() bool {
	return !p.eof
}

// Credentials asks for a username and password.
func (p *Prompter) Credentials() (username, password string) {
	return p.Ask("Username: "), p.Ask("Password: ")
}

// Application asks for the fields of a new application.
func (p *Prompter) Application() models.ApplicationInput {
	return models.ApplicationInput{
		Company: p.Ask("Company: "),
		Role:    p.Ask("Role (optional): "),
		Link:    p.Ask("Link (optional): "),
		Status:  p.Ask("Status [applied]: "),
		DueDate: p.Ask("Due date YYYY-MM-DD (optional): "),
		Notes:   p.Ask("Notes (optional): "),
	}
}

// Deliverable asks for the fields of a new deliverable of applicationID.
func (p *Prompter) Deliverable(applicationID string) models.DeliverableInput {
	return models.DeliverableInput{
		ApplicationID: applicationID,
		Description:   p.Ask("Description: "),
		Kind:          p.Ask("Kind (essay/question/resume/cover_letter/form/other): "),
		DueDate:       p.Ask("Due date YYYY-MM-DD (optional): "),
		State:         p.Ask("State (not_started/in_progress/done) [not_started]: "),
		Content:       p.Ask("Draft (optional): "),
	}
}

// WritingNote asks for a title and tags, then reads content lines until a
// line containing only ".".
func (p *Prompter) WritingNote(applicationID string) models.WritingNoteInput {
	in := models.WritingNoteInput{ApplicationID: applicationID, Title: p.Ask("Title (optional): ")}
	in.Tags = models.NormalizeTags([]string{p.Ask("Tags, comma separated (optional): ")})
	fmt.Fprintln(p.out, `Content (end with a line containing only "."):`)
	var lines []string
	for p.scanner.Scan() {
		line := p.scanner.Text()
		if strings.TrimSpace(line) == "." {
			break
		}
		lines = append(lines, line)
	}
	in.Content = strings.Join(lines, "\n")
	return in
}
