package main

import (
	"strings"
	"time"

	"github.com/alertautec/alertautec/internal/bootstrap"
	domainauth "github.com/alertautec/alertautec/internal/domain/auth"
	apperrors "github.com/alertautec/alertautec/internal/errors"
	"github.com/alertautec/alertautec/internal/service"
	"github.com/alertautec/alertautec/internal/util"
	"github.com/alertautec/alertautec/internal/validation"
)

const (
	maxNameLen     = 100
	maxEmailLen    = 254
	minPasswordLen = 6
	maxPasswordLen = 128
)

type loginOptions struct {
	Email    string
	Password string
}

type registerOptions struct {
	Nombre   string
	Apellido string
	Email    string
	Password string
	Role     string
}

type whoamiOptions struct {
	JSON bool
}

func roleNames() []string {
	roles := domainauth.Roles()
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

// emailValidators applies the institutional rule only when a domain is configured.
func emailValidators(cmdCtx *commandContext) []validation.Validator {
	return []validation.Validator{
		validation.Required("Correo institucional", maxEmailLen),
		validation.Email("Correo institucional"),
		validation.InstitutionalEmail("Correo institucional", cmdCtx.Config.Auth.InstitutionDomain),
	}
}

func parseLoginFlags(cmdCtx *commandContext, args []string) (loginOptions, error) {
	fs := newFlagSet(cmdCtx, "login")

	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Institutional e-mail (required)")
	fs.StringVar(&opts.Password, "password", "", "Password (defaults to "+passwordEnv+", then a prompt that does not echo on a terminal)")

	if err := parseFlags(fs, args); err != nil {
		return loginOptions{}, err
	}
	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return loginOptions{}, usagef("--email is required")
	}
	return opts, nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(cmdCtx, args)
	if err != nil {
		return err
	}
	password, err := readPassword(cmdCtx, opts.Password)
	if err != nil {
		return err
	}

	if err := validation.New().
		Validate("email", opts.Email, emailValidators(cmdCtx)...).
		Validate("password", password, validation.Required("Contraseña", maxPasswordLen)).
		Err(); err != nil {
		return err
	}

	return withApp(cmdCtx, func(app *bootstrap.App) error {
		sess, err := app.Auth.SignIn(cmdCtx.Ctx, opts.Email, password)
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "Signed in as %s <%s> (%s)\n", sess.User.Name, sess.User.Email, sess.User.Role)
	})
}

func parseRegisterFlags(cmdCtx *commandContext, args []string) (registerOptions, error) {
	fs := newFlagSet(cmdCtx, "register")

	opts := registerOptions{Role: string(domainauth.DefaultRole)}
	fs.StringVar(&opts.Nombre, "nombre", "", "First name (required)")
	fs.StringVar(&opts.Apellido, "apellido", "", "Last name (required)")
	fs.StringVar(&opts.Email, "email", "", "Institutional e-mail (required)")
	fs.StringVar(&opts.Password, "password", "", "Password (defaults to "+passwordEnv+", then a prompt that does not echo on a terminal)")
	fs.StringVar(&opts.Role, "role", opts.Role, "Role: "+strings.Join(roleNames(), ", "))

	if err := parseFlags(fs, args); err != nil {
		return registerOptions{}, err
	}
	opts.Nombre = strings.TrimSpace(opts.Nombre)
	opts.Apellido = strings.TrimSpace(opts.Apellido)
	opts.Email = strings.TrimSpace(opts.Email)
	return opts, nil
}

func runRegister(cmdCtx *commandContext, args []string) error {
	opts, err := parseRegisterFlags(cmdCtx, args)
	if err != nil {
		return err
	}
	password, err := readPassword(cmdCtx, opts.Password)
	if err != nil {
		return err
	}

	if err := validation.New().
		Validate("nombre", opts.Nombre, validation.Required("Nombre", maxNameLen)).
		Validate("apellido", opts.Apellido, validation.Required("Apellido", maxNameLen)).
		Validate("email", opts.Email, emailValidators(cmdCtx)...).
		Validate("password", password, validation.RequiredRange("Contraseña", minPasswordLen, maxPasswordLen)).
		Validate("role", opts.Role, validation.OneOf("Rol", roleNames())).
		Err(); err != nil {
		return err
	}
	role, err := domainauth.ParseRole(opts.Role)
	if err != nil {
		return apperrors.ValidationField("role", err.Error())
	}

	return withApp(cmdCtx, func(app *bootstrap.App) error {
		sess, err := app.Auth.SignUp(cmdCtx.Ctx, service.RegisterInput{
			Nombre:   opts.Nombre,
			Apellido: opts.Apellido,
			Email:    opts.Email,
			Password: password,
			Role:     role,
		})
		if err != nil {
			return err
		}
		return writef(cmdCtx.Out, "Account created. Signed in as %s <%s> (%s)\n", sess.User.Name, sess.User.Email, sess.User.Role)
	})
}

func runLogout(cmdCtx *commandContext, args []string) error {
	if err := parseFlags(newFlagSet(cmdCtx, "logout"), args); err != nil {
		return err
	}
	return withApp(cmdCtx, func(app *bootstrap.App) error {
		if err := app.Auth.SignOut(cmdCtx.Ctx); err != nil {
			return err
		}
		return writef(cmdCtx.Out, "Signed out.\n")
	})
}

type whoamiView struct {
	User    domainauth.User `json:"user"`
	IsAdmin bool            `json:"isAdmin"`
	Token   tokenView       `json:"token"`
}

type tokenView struct {
	IsJWT     bool       `json:"isJwt"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Expired   bool       `json:"expired"`
}

func runWhoami(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "whoami")
	var opts whoamiOptions
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	return withApp(cmdCtx, func(app *bootstrap.App) error {
		sess, err := app.Auth.RequireSession(cmdCtx.Ctx)
		if err != nil {
			return err
		}

		now := time.Now()
		info := service.InspectToken(sess.Token, now)
		view := whoamiView{
			User:    sess.User,
			IsAdmin: sess.User.Role.IsAdmin(),
			Token:   tokenView{IsJWT: info.IsJWT, Subject: info.Subject, Expired: info.Expired},
		}
		if !info.ExpiresAt.IsZero() {
			exp := info.ExpiresAt
			view.Token.ExpiresAt = &exp
		}

		if opts.JSON {
			return writeJSON(cmdCtx.Out, view)
		}
		return printWhoami(cmdCtx, view, now)
	})
}

func printWhoami(cmdCtx *commandContext, v whoamiView, now time.Time) error {
	if err := writef(cmdCtx.Out, "Name:  %s\nEmail: %s\nRole:  %s\nID:    %s\n",
		v.User.Name, v.User.Email, v.User.Role, v.User.ID); err != nil {
		return err
	}
	if v.IsAdmin {
		if err := writef(cmdCtx.Out, "Admin: yes\n"); err != nil {
			return err
		}
	}

	switch {
	case !v.Token.IsJWT:
		return writef(cmdCtx.Out, "Token: opaque\n")
	case v.Token.ExpiresAt == nil:
		return writef(cmdCtx.Out, "Token: JWT without expiry\n")
	case v.Token.Expired:
		return writef(cmdCtx.Out, "Token: expired at %s; sign in again\n", v.Token.ExpiresAt.Local().Format(util.DisplayTimeLayout))
	default:
		return writef(cmdCtx.Out, "Token: expires in %s\n", util.FormatDuration(v.Token.ExpiresAt.Sub(now)))
	}
}
