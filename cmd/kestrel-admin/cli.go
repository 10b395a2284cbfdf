package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pigeonsec/kestrel-admin/internal/console"
	"github.com/pigeonsec/kestrel-admin/internal/session"
	"github.com/pigeonsec/kestrel-admin/pkg/client"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5b042")).Bold(true)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#505868"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e06060"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#60a0e0"))
)

func formatNotice(n console.Notice) string {
	style := infoStyle
	switch n.Severity {
	case console.SeveritySuccess:
		style = successStyle
	case console.SeverityError:
		style = errorStyle
	}
	return style.Bold(true).Render(n.Title) + " " + n.Message
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		}).
		String()
}

// reported turns an orchestrator error into errReported when a notice
// already told the operator about it.
func reported(err error) error {
	if _, ok := console.AsFailure(err); ok {
		return errReported
	}
	return err
}

func (e *cli) runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(e.out)
	username := fs.String("username", "", "operator username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reader := bufio.NewReader(e.in)
	if *username == "" {
		u, err := prompt(e.out, reader, "Username: ")
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		*username = u
	}
	password, err := promptSecret(e.out, e.in, reader, "Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if *username == "" || password == "" {
		return errors.New("username and password are required")
	}

	user, err := e.mgr.Login(context.Background(), *username, password)
	if err != nil {
		if msg, ok := client.APIMessage(err); ok {
			return errors.New(msg)
		}
		if client.IsAuthFailure(err) {
			return errors.New("invalid username or password")
		}
		return err
	}
	role := "operator"
	if user.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(e.out, "Signed in to %s as %s (%s)\n", e.api.BaseURL(), user.Username, role)
	return nil
}

func (e *cli) runLogout() error {
	if e.mgr.Status() == session.StatusUnauthenticated {
		fmt.Fprintln(e.out, "Already logged out.")
		return nil
	}
	e.mgr.Logout()
	fmt.Fprintln(e.out, "Logged out.")
	return nil
}

func (e *cli) runStatus() error {
	ctx := context.Background()
	fmt.Fprintf(e.out, "API      %s\n", e.api.BaseURL())
	if err := e.api.Health(ctx); err != nil {
		fmt.Fprintf(e.out, "Backend  %s\n", errorStyle.Render("unreachable: "+err.Error()))
	} else {
		fmt.Fprintf(e.out, "Backend  %s\n", successStyle.Render("ok"))
	}

	snap := e.mgr.Snapshot()
	switch {
	case snap.User != nil:
		role := "operator"
		if snap.User.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(e.out, "Session  %s as %s (%s)\n", snap.Status, snap.User.Username, role)
	default:
		fmt.Fprintf(e.out, "Session  %s\n", snap.Status)
	}
	return nil
}

func (e *cli) runIOCs(args []string) error {
	fs := flag.NewFlagSet("iocs", flag.ContinueOnError)
	fs.SetOutput(e.out)
	feed := fs.String("feed", "", "only list indicators of this feed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	orch := e.orchestrator()
	orch.SetIndicatorFeedFilter(*feed)
	items, err := orch.ListIndicators(context.Background())
	if err != nil {
		return reported(err)
	}
	if len(items) == 0 {
		fmt.Fprintln(e.out, "No IOCs")
		return nil
	}
	rows := make([][]string, 0, len(items))
	for _, ind := range items {
		f := ind.Feed
		if f == "" {
			f = "-"
		}
		rows = append(rows, []string{string(ind.Type), ind.Value, f})
	}
	fmt.Fprintln(e.out, renderTable([]string{"TYPE", "VALUE", "FEED"}, rows))
	return nil
}

func (e *cli) runFeeds() error {
	feeds, err := e.orchestrator().ListFeeds(context.Background())
	if err != nil {
		return reported(err)
	}
	if len(feeds) == 0 {
		fmt.Fprintln(e.out, "No feeds")
		return nil
	}
	rows := make([][]string, 0, len(feeds))
	for _, f := range feeds {
		rows = append(rows, []string{f.Name, strconv.Itoa(f.IndicatorCount), string(f.AccessLevel), f.Path()})
	}
	fmt.Fprintln(e.out, renderTable([]string{"NAME", "IOCS", "ACCESS", "PATH"}, rows))
	return nil
}

func (e *cli) runKeys() error {
	keys, err := e.orchestrator().ListAPIKeys(context.Background())
	if err != nil {
		return reported(err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(e.out, "No API keys")
		return nil
	}
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		created := "-"
		if !k.CreatedAt.IsZero() {
			created = k.CreatedAt.Format("2006-01-02")
		}
		rows = append(rows, []string{k.ID, k.Name, k.MaskedSecret(), string(k.Role), created})
	}
	fmt.Fprintln(e.out, renderTable([]string{"ID", "NAME", "KEY", "ROLE", "CREATED"}, rows))
	return nil
}

func (e *cli) runSetAccess(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: kestrel-admin set-access <feed> <free|paid|private>")
	}
	level := domain.AccessLevel(strings.ToLower(args[1]))
	feed, err := e.orchestrator().SetFeedAccessLevel(context.Background(), args[0], level)
	if err != nil {
		return reported(err)
	}
	fmt.Fprintf(e.out, "%s is now %s\n", feed.Name, feed.AccessLevel)
	return nil
}

func (e *cli) runImport(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: kestrel-admin import <file.yaml>")
	}
	var r io.Reader
	if args[0] == "-" {
		r = e.in
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}

	report, err := e.orchestrator().Import(context.Background(), r)
	if report != nil {
		for _, res := range report.Failed {
			msg := res.Err.Error()
			if f, ok := console.AsFailure(res.Err); ok {
				msg = f.Message
			}
			fmt.Fprintf(e.out, "  #%d %s: %s\n", res.Index+1, res.Value, errorStyle.Render(msg))
		}
	}
	if err != nil {
		return reported(err)
	}
	if len(report.Failed) > 0 {
		return errReported
	}
	return nil
}

func prompt(out io.Writer, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
