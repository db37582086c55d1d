package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atinyakov/JobTracker/internal/client/api"
	"github.com/atinyakov/JobTracker/internal/client/storage"
	"github.com/atinyakov/JobTracker/internal/models"
)

var (
	version   string
	buildDate string
)

const requestTimeout = 90 * time.Second

// shell holds everything the interactive loop needs.
type shell struct {
	api     *api.Client
	session *storage.Session
	prompt  *storage.Prompter
	out     io.Writer
	// history is the running assistant conversation per application.
	history map[string][]models.ChatTurn
}

func (s *shell) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// authenticate registers or logs in with prompted credentials and saves the session.
func (s *shell) authenticate(register bool) error {
	username, password := s.prompt.Credentials()
	ctx, cancel := s.ctx()
	defer cancel()

	call := s.api.Login
	if register {
		call = s.api.Register
	}
	sess, err := call(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.session.Set(sess.User.Username, sess.Token, sess.ExpiresAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(s.out, "Logged in as %s until %s\n", sess.User.Username, sess.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

func (s *shell) printApplications(apps []models.Application) {
	if len(apps) == 0 {
		fmt.Fprintln(s.out, "No applications")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tROLE\tSTATUS\tDUE")
	for _, a := range apps {
		due := "-"
		if a.DueDate != nil {
			due = a.DueDate.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Company, a.Role, a.Status, due)
	}
	_ = tw.Flush()
}

func (s *shell) printDeliverables(items []models.Deliverable) {
	if len(items) == 0 {
		fmt.Fprintln(s.out, "No deliverables")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATE\tDUE\tDESCRIPTION")
	for _, d := range items {
		due := "-"
		if d.DueDate != nil {
			due = d.DueDate.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Kind, d.State, due, d.Description)
	}
	_ = tw.Flush()
}

const helpText = `Commands:
  meta                         show your application quota
  list [status] [query]        list applications
  add                          add an application
  status <id> <status>         change an application's status
  delete <id>                  delete an application
  deliverables <id>            list an application's deliverables
  add-deliverable <id>         add a deliverable
  done <deliverable-id>        mark a deliverable completed
  state <deliverable-id> <st>  set not_started, in_progress or done
  notes <id> [query]           list or search an application's writing notes
  note <id>                    add a writing note
  ask <id> <message>           ask the assistant about an application
  analytics                    show your dashboard summary
  password                     change your password
  logout                       forget the saved session
  exit`

// run executes one shell command. It returns false when the shell should stop.
func (s *shell) run(args []string) (bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	need := func(n int, usage string) error {
		if len(args) < n+1 {
			return fmt.Errorf("usage: %s", usage)
		}
		return nil
	}

	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "meta":
		m, err := s.api.Meta(ctx)
		if err != nil {
			return true, err
		}
		fmt.Fprintf(s.out, "%d of %d applications used\n", m.Count, m.Limit)
	case "list":
		var status, query string
		if len(args) > 1 {
			status = args[1]
		}
		if len(args) > 2 {
			query = strings.Join(args[2:], " ")
		}
		apps, err := s.api.ListApplications(ctx, status, query)
		if err != nil {
			return true, err
		}
		s.printApplications(apps)
	case "add":
		a, err := s.api.CreateApplication(ctx, s.prompt.Application())
		if err != nil {
			return true, err
		}
		fmt.Fprintf(s.out, "Added %s (%s)\n", a.Company, a.ID)
	case "status":
		if err := need(2, "status <id> <status>"); err != nil {
			return true, err
		}
		a, err := s.api.UpdateApplication(ctx, args[1], models.ApplicationPatch{Status: &args[2]})
		if err != nil {
			return true, err
		}
		fmt.Fprintf(s.out, "%s is now %s\n", a.Company, a.Status)
	case "delete":
		if err := need(1, "delete <id>"); err != nil {
			return true, err
		}
		if err := s.api.DeleteApplication(ctx, args[1]); err != nil {
			return true, err
		}
		delete(s.history, args[1])
		fmt.Fprintln(s.out, "Application deleted")
	case "deliverables":
		if err := need(1, "deliverables <id>"); err != nil {
			return true, err
		}
		items, err := s.api.ListDeliverables(ctx, args[1])
		if err != nil {
			return true, err
		}
		s.printDeliverables(items)
	case "add-deliverable":
		if err := need(1, "add-deliverable <id>"); err != nil {
			return true, err
		}
		d, err := s.api.CreateDeliverable(ctx, s.prompt.Deliverable(args[1]))
		if err != nil {
			return true, err
		}
		fmt.Fprintf(s.out, "Added deliverable %s\n", d.ID)
	case "done":
		if err := need(1, "done <deliverable-id>"); err != nil {
			return true, err
		}
		completed := true
		if _, err := s.api.UpdateDeliverable(ctx, args[1], models.DeliverablePatch{Completed: &completed}); err != nil {
			return true, err
		}
		fmt.Fprintln(s.out, "Deliverable completed")
	case "state":
		if err := need(2, "state <deliverable-id> <state>"); err != nil {
			return true, err
		}
		d, err := s.api.UpdateDeliverable(ctx, args[1], models.DeliverablePatch{State: &args[2]})
		if err != nil {
			return true, err
		}
		fmt.Fprintf(s.out, "Deliverable is now %s\n", d.State)
	case "notes":
		if err := need(1, "notes <id> [query]"); err != nil {
			return true, err
		}
		notes, err := s.api.ListWritingNotes(ctx, args[1], strings.Join(args[2:], " "))
		if err != nil {
			return true, err
		}
		if len(notes) == 0 {
			fmt.Fprintln(s.out, "No writing notes")
		}
		for _, n := range notes {
			fmt.Fprintf(s.out, "== %s (%s)\n", n.Title, n.ID)
			if len(n.Tags) > 0 {
				fmt.Fprintf(s.out, "tags: %s\n", strings.Join(n.Tags, ", "))
			}
			fmt.Fprintf(s.out, "%s\n\n", n.Content)
		}
	case "note":
		if err := need(1, "note <id>"); err != nil {
			return true, err
		}
		n, err := s.api.CreateWritingNote(ctx, s.prompt.WritingNote(args[1]))
		if err != nil {
			return true, err
		}
		fmt.Fprintf(s.out, "Saved note %s\n", n.ID)
	case "ask":
		if err := need(2, "ask <id> <message>"); err != nil {
			return true, err
		}
		appID, message := args[1], strings.Join(args[2:], " ")
		reply, err := s.api.Ask(ctx, appID, message, s.history[appID])
		if err != nil {
			return true, err
		}
		s.history[appID] = append(s.history[appID],
			models.ChatTurn{Role: "user", Content: message},
			models.ChatTurn{Role: "assistant", Content: reply},
		)
		fmt.Fprintln(s.out, reply)
	case "analytics":
		sum, err := s.api.Analytics(ctx)
		if err != nil {
			return true, err
		}
		fmt.Fprintf(s.out, "Total: %d  Last 30 days: %d  Interview rate: %.0f%%\n",
			sum.TotalApplications, sum.ApplicationsLast30Days, sum.InterviewRate*100)
		for _, st := range models.Statuses {
			fmt.Fprintf(s.out, "  %-10s %d\n", st, sum.StatusBreakdown[st])
		}
	case "password":
		oldPassword := s.prompt.Ask("Current password: ")
		newPassword := s.prompt.Ask("New password: ")
		if err := s.api.ChangePassword(ctx, oldPassword, newPassword); err != nil {
			return true, err
		}
		fmt.Fprintln(s.out, "Password changed")
	case "logout":
		if err := s.session.Clear(); err != nil {
			return true, err
		}
		fmt.Fprintln(s.out, "Logged out")
		return false, nil
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return false, nil
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return true, nil
}

// repl runs the interactive shell loop until exit, logout or EOF.
func (s *shell) repl() {
	for {
		line := s.prompt.Ask("jobtracker> ")
		args := strings.Fields(line)
		if len(args) == 0 {
			if line == "" && !s.prompt.More() {
				return
			}
			continue
		}
		more, err := s.run(args)
		if err != nil {
			var apiErr *api.APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
				fmt.Fprintln(s.out, "Session expired, please log in again")
				_ = s.session.Clear()
				return
			}
			fmt.Fprintln(s.out, "Error:", err)
		}
		if !more {
			return
		}
	}
}

// main parses command-line flags and dispatches to register, login or the shell.
func main() {
	var (
		cmd         string
		baseURL     string
		caFile      string
		sessionFile string
		showVer     bool
	)

	flag.StringVar(&cmd, "cmd", "shell", "command: register | login | shell")
	flag.StringVar(&baseURL, "url", "https://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for a self-signed server certificate")
	flag.StringVar(&sessionFile, "session", storage.DefaultSessionFile, "path to the saved session")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("JobTracker Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	httpClient, err := storage.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	session, err := storage.LoadSession(sessionFile)
	if err != nil {
		log.Fatal(err)
	}

	sh := &shell{
		api:     api.New(baseURL, httpClient),
		session: session,
		prompt:  storage.NewPrompter(os.Stdin, os.Stdout),
		out:     os.Stdout,
		history: make(map[string][]models.ChatTurn),
	}

	switch cmd {
	case "register", "login":
		if err := sh.authenticate(cmd == "register"); err != nil {
			log.Fatal(err)
		}
	case "shell":
		token, err := session.ActiveToken()
		if errors.Is(err, storage.ErrNoSession) {
			if err := sh.authenticate(false); err != nil {
				log.Fatal(err)
			}
			token, err = session.ActiveToken()
		}
		if err != nil {
			log.Fatal(err)
		}
		sh.api.Token = token
		sh.repl()
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
