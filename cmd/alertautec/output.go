package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/alertautec/alertautec/internal/domain/model"
	"github.com/alertautec/alertautec/internal/service"
	"github.com/alertautec/alertautec/internal/util"
)

// passwordEnv lets scripts pass a password without exposing it in argv.
const passwordEnv = "ALERTAUTEC_PASSWORD"

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	return nil
}

func printIncidentTable(w io.Writer, incidents []model.Incident) error {
	if len(incidents) == 0 {
		return writef(w, "No incidents found.\n")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "ID\tSTATUS\tURGENCY\tTYPE\tLOCATION\tCREATED\tREPORTED BY\n"); err != nil {
		return fmt.Errorf("print incident header: %w", err)
	}
	for _, inc := range incidents {
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inc.ID,
			inc.Status,
			inc.Urgency,
			util.Truncate(inc.Type, 24),
			util.Truncate(inc.Location, 28),
			util.FormatTimestamp(inc.CreatedAt, time.Local),
			util.Truncate(inc.CreatedBy, 24),
		); err != nil {
			return fmt.Errorf("print incident row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush incident table: %w", err)
	}
	return nil
}

func printIncidentDetail(w io.Writer, inc *model.Incident) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := []struct{ label, value string }{
		{"ID", inc.ID},
		{"Type", inc.Type},
		{"Location", inc.Location},
		{"Description", util.OrPlaceholder(inc.Description)},
		{"Urgency", string(inc.Urgency)},
		{"Status", string(inc.Status)},
		{"Created", util.FormatTimestamp(inc.CreatedAt, time.Local)},
		{"Updated", util.FormatTimestamp(inc.UpdatedAt, time.Local)},
		{"Reported by", fmt.Sprintf("%s (%s)", inc.CreatedBy, inc.Role)},
		{"Assigned team", util.OrPlaceholder(inc.AssignedTeam)},
		{"Assigned to", util.OrPlaceholder(inc.AssignedTo)},
	}
	for _, r := range rows {
		if err := writef(tw, "%s:\t%s\n", r.label, r.value); err != nil {
			return fmt.Errorf("print incident detail: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush incident detail: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, sum service.IncidentSummary) error {
	if err := writef(w, "Total incidents: %d (open: %d)\n", sum.Total, sum.Open); err != nil {
		return fmt.Errorf("print summary totals: %w", err)
	}
	if err := writef(w, "Latest report:   %s\n\n", util.FormatTimestamp(sum.LatestCreatedAt, time.Local)); err != nil {
		return fmt.Errorf("print summary latest: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "STATUS\tCOUNT\n"); err != nil {
		return fmt.Errorf("print summary header: %w", err)
	}
	for _, st := range model.IncidentStatuses() {
		if err := writef(tw, "%s\t%d\n", st, sum.ByStatus[st]); err != nil {
			return fmt.Errorf("print summary status: %w", err)
		}
	}
	if err := writef(tw, "\nURGENCY\tCOUNT\n"); err != nil {
		return fmt.Errorf("print summary header: %w", err)
	}
	for _, u := range model.Urgencies() {
		if err := writef(tw, "%s\t%d\n", u, sum.ByUrgency[u]); err != nil {
			return fmt.Errorf("print summary urgency: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}
	return nil
}

// readPassword returns the flag value, then ALERTAUTEC_PASSWORD, then input
// read after a prompt on stderr. A terminal is read without echo; any other
// input is read up to the first newline.
func readPassword(cmdCtx *commandContext, fromFlag string) (string, error) {
	if fromFlag != "" {
		return fromFlag, nil
	}
	if v := os.Getenv(passwordEnv); v != "" {
		return v, nil
	}

	if err := writef(cmdCtx.Err, "Contraseña: "); err != nil {
		return "", fmt.Errorf("print password prompt: %w", err)
	}

	if f, ok := cmdCtx.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		_ = writef(cmdCtx.Err, "\n")
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	reader := bufio.NewReader(cmdCtx.In)
	resp, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && resp != "") {
		return "", usagef("password is required (use --password, %s or stdin)", passwordEnv)
	}
	return strings.TrimRight(resp, "\r\n"), nil
}
