package main

import (
	"regexp"
	"strings"

	"github.com/alertautec/alertautec/internal/bootstrap"
	"github.com/alertautec/alertautec/internal/domain/model"
	apperrors "github.com/alertautec/alertautec/internal/errors"
	"github.com/alertautec/alertautec/internal/service"
	"github.com/alertautec/alertautec/internal/validation"
)

const (
	maxTypeLen        = 100
	maxLocationLen    = 200
	maxDescriptionLen = 2000
	maxQueryLen       = 1000
)

// incidentIDPattern rejects whitespace and path separators in ids.
var incidentIDPattern = regexp.MustCompile(`^[^\s/]+$`)

func validateIncidentID(id string) error {
	return validation.New().
		Validate("id", id, validation.Pattern("ID", incidentIDPattern)).
		Err()
}

type listOptions struct {
	Query string
	JSON  bool
}

type showOptions struct {
	ID   string
	JSON bool
}

type reportOptions struct {
	Type        string
	Location    string
	Description string
	Urgency     string
	JSON        bool
}

type updateStatusOptions struct {
	ID     string
	Status string
}

func urgencyNames() []string {
	out := make([]string, 0, 3)
	for _, u := range model.Urgencies() {
		out = append(out, string(u))
	}
	return out
}

func statusNames() []string {
	out := make([]string, 0, 3)
	for _, s := range model.IncidentStatuses() {
		out = append(out, string(s))
	}
	return out
}

func runIncidents(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "incidents")
	var opts listOptions
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression over the JSON view, e.g. \"[?status=='pendiente'].id\"")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := validation.New().
		Validate("query", opts.Query, validation.Optional("Consulta", maxQueryLen)).
		Err(); err != nil {
		return err
	}

	return withApp(cmdCtx, func(app *bootstrap.App) error {
		if _, err := app.Auth.RequireSession(cmdCtx.Ctx); err != nil {
			return err
		}
		if strings.TrimSpace(opts.Query) != "" {
			out, err := app.Incidents.Query(cmdCtx.Ctx, opts.Query)
			if err != nil {
				return err
			}
			return writeJSON(cmdCtx.Out, out)
		}

		incidents, err := app.Incidents.List(cmdCtx.Ctx)
		if err != nil {
			return err
		}
		if opts.JSON {
			if incidents == nil {
				incidents = []model.Incident{}
			}
			return writeJSON(cmdCtx.Out, incidents)
		}
		return printIncidentTable(cmdCtx.Out, incidents)
	})
}

func runIncident(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "incident")
	var opts showOptions
	fs.StringVar(&opts.ID, "id", "", "Incident id (required)")
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	opts.ID = strings.TrimSpace(opts.ID)
	if opts.ID == "" {
		return usagef("--id is required")
	}
	if err := validateIncidentID(opts.ID); err != nil {
		return err
	}

	return withApp(cmdCtx, func(app *bootstrap.App) error {
		if _, err := app.Auth.RequireSession(cmdCtx.Ctx); err != nil {
			return err
		}
		inc, err := app.Incidents.GetByID(cmdCtx.Ctx, opts.ID)
		if err != nil {
			return err
		}
		if inc == nil {
			return apperrors.NotFoundf("incident %s not found", opts.ID)
		}
		if opts.JSON {
			return writeJSON(cmdCtx.Out, inc)
		}
		return printIncidentDetail(cmdCtx.Out, inc)
	})
}

func parseReportFlags(cmdCtx *commandContext, args []string) (reportOptions, error) {
	fs := newFlagSet(cmdCtx, "report")
	opts := reportOptions{Urgency: string(model.DefaultUrgency)}
	fs.StringVar(&opts.Type, "type", "", "Incident type, e.g. \"Robo\" (required)")
	fs.StringVar(&opts.Location, "location", "", "Where it happened (required)")
	fs.StringVar(&opts.Description, "description", "", "What happened (required)")
	fs.StringVar(&opts.Urgency, "urgency", opts.Urgency, "Urgency: "+strings.Join(urgencyNames(), ", "))
	fs.BoolVar(&opts.JSON, "json", false, "Print the created incident as JSON")
	if err := parseFlags(fs, args); err != nil {
		return reportOptions{}, err
	}
	opts.Type = strings.TrimSpace(opts.Type)
	opts.Location = strings.TrimSpace(opts.Location)
	opts.Description = strings.TrimSpace(opts.Description)
	opts.Urgency = strings.ToLower(strings.TrimSpace(opts.Urgency))
	return opts, nil
}

func runReport(cmdCtx *commandContext, args []string) error {
	opts, err := parseReportFlags(cmdCtx, args)
	if err != nil {
		return err
	}
	if err := validation.New().
		Validate("type", opts.Type, validation.Required("Tipo", maxTypeLen)).
		Validate("location", opts.Location, validation.Required("Ubicación", maxLocationLen)).
		Validate("description", opts.Description, validation.Required("Descripción", maxDescriptionLen)).
		Validate("urgency", opts.Urgency, validation.OneOf("Urgencia", urgencyNames())).
		Err(); err != nil {
		return err
	}
	urgency, err := model.ParseUrgency(opts.Urgency)
	if err != nil {
		return apperrors.ValidationField("urgency", err.Error())
	}

	return withApp(cmdCtx, func(app *bootstrap.App) error {
		sess, err := app.Auth.RequireSession(cmdCtx.Ctx)
		if err != nil {
			return err
		}
		inc, err := app.Incidents.Create(cmdCtx.Ctx, model.NewIncidentPayload{
			Type:        opts.Type,
			Location:    opts.Location,
			Description: opts.Description,
			Urgency:     urgency,
		}, sess.User.Name, sess.User.Role)
		if err != nil {
			return err
		}
		if opts.JSON {
			return writeJSON(cmdCtx.Out, inc)
		}
		return writef(cmdCtx.Out, "Incident %s reported (%s, %s).\n", inc.ID, inc.Status, inc.Urgency)
	})
}

func runUpdateStatus(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "update-status")
	var opts updateStatusOptions
	fs.StringVar(&opts.ID, "id", "", "Incident id (required)")
	fs.StringVar(&opts.Status, "status", "", "New status: "+strings.Join(statusNames(), ", ")+" (required)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	opts.ID = strings.TrimSpace(opts.ID)
	if opts.ID == "" {
		return usagef("--id is required")
	}
	if strings.TrimSpace(opts.Status) == "" {
		return usagef("--status is required")
	}
	if err := validateIncidentID(opts.ID); err != nil {
		return err
	}
	status, err := model.ParseIncidentStatus(opts.Status)
	if err != nil {
		return apperrors.ValidationField("status", err.Error())
	}

	return withApp(cmdCtx, func(app *bootstrap.App) error {
		upd, err := app.Incidents.UpdateStatus(cmdCtx.Ctx, opts.ID, status)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "Incident %s set to %s.\n", upd.ID, upd.Status)
	})
}

func runAdminDashboard(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "admin-dashboard")
	var asJSON bool
	fs.BoolVar(&asJSON, "json", false, "Print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	return withApp(cmdCtx, func(app *bootstrap.App) error {
		if _, err := app.Auth.RequireAdmin(cmdCtx.Ctx); err != nil {
			return err
		}
		incidents, err := app.Incidents.List(cmdCtx.Ctx)
		if err != nil {
			return err
		}
		sum := service.Summarize(incidents)
		if asJSON {
			return writeJSON(cmdCtx.Out, sum)
		}
		return printSummary(cmdCtx.Out, sum)
	})
}
