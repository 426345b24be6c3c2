package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertautec/alertautec/config"
	"github.com/alertautec/alertautec/internal/bootstrap"
	domainauth "github.com/alertautec/alertautec/internal/domain/auth"
	apperrors "github.com/alertautec/alertautec/internal/errors"
	mocks "github.com/alertautec/alertautec/internal/mocks/auth"
	"github.com/alertautec/alertautec/internal/service"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// fakeBackend serves the incident API from memory.
type fakeBackend struct {
	mu        sync.Mutex
	requests  []recordedRequest
	history   []map[string]any
	loginBody map[string]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		history: []map[string]any{
			{"incidente_id": "i1", "tipo_incidencia": "Robo", "ubicacion": "Pabellón A", "descripcion": "Celular robado",
				"urgencia": "alta", "fase": "pendiente", "fecha_creacion": "2025-03-01T10:00:00.000Z", "reportado_por_nombre": "Ana Ruiz", "role": "estudiante"},
			{"incidente_id": "i2", "tipo_incidencia": "Fuga", "ubicacion": "Lab 3", "descripcion": "Fuga de agua",
				"urgencia": "baja", "fase": "resuelta", "fecha_creacion": "2025-03-02T10:00:00.000Z", "reportado_por_nombre": "Luis Paz", "role": "staff"},
		},
		loginBody: map[string]any{
			"token": "tok-1", "user_id": "u1", "nombre": "Ana", "apellido": "Ruiz",
			"tenant_id": "ana@utec.edu.pe", "role": "estudiante",
		},
	}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		body := b.record(r)
		if body["password"] != "secret" {
			writeTestJSON(w, http.StatusUnauthorized, map[string]any{"message": "Credenciales inválidas"})
			return
		}
		writeTestJSON(w, http.StatusOK, b.loginBody)
	})
	mux.HandleFunc("POST /users/register", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeTestJSON(w, http.StatusCreated, map[string]any{"ok": true})
	})
	mux.HandleFunc("GET /incidents/history", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		writeTestJSON(w, http.StatusOK, map[string]any{"items": b.history})
	})
	mux.HandleFunc("POST /incidents/create", func(w http.ResponseWriter, r *http.Request) {
		body := b.record(r)
		item := map[string]any{"incidente_id": "i9", "fase": "pendiente", "fecha_creacion": "2025-03-14T09:26:53.589Z"}
		for k, v := range body {
			item[k] = v
		}
		writeTestJSON(w, http.StatusCreated, map[string]any{"item": item})
	})
	mux.HandleFunc("PUT /incidents/update", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		writeTestJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	return mux
}

func (b *fakeBackend) record(r *http.Request) map[string]any {
	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	return body
}

func (b *fakeBackend) setHistory(items []map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = items
}

func (b *fakeBackend) calls() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type cliHarness struct {
	backend *fakeBackend
	store   *mocks.MemoryKeyValueStore
	cfg     config.AppConfig
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	return &cliHarness{
		backend: backend,
		store:   mocks.NewMemoryKeyValueStore(),
		cfg: config.AppConfig{
			API:     config.APIConfig{URL: srv.URL},
			Session: config.SessionConfig{Namespace: "alertautec"},
			Auth:    config.AuthConfig{InstitutionDomain: "utec.edu.pe"},
		},
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
}

func (h *cliHarness) context(in string) *commandContext {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: h.cfg,
		Out:    h.out,
		Err:    h.errOut,
		In:     strings.NewReader(in),
		newApp: func(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*bootstrap.App, error) {
			return bootstrap.NewApp(ctx, bootstrap.AppOptions{Config: cfg, Logger: logger, Store: h.store})
		},
	}
}

func (h *cliHarness) run(t *testing.T, name string, args ...string) error {
	t.Helper()
	h.out.Reset()
	h.errOut.Reset()
	cmd, ok := commands()[name]
	require.True(t, ok, "command %s", name)
	return cmd.run(h.context(""), args)
}

func (h *cliHarness) signIn(t *testing.T, role domainauth.Role) {
	t.Helper()
	sessions := service.NewSessionService(service.SessionServiceOptions{Store: h.store, Namespace: "alertautec"})
	user := domainauth.User{ID: "u1", Name: "Ana Ruiz", Email: "ana@utec.edu.pe", Role: role}
	require.NoError(t, sessions.Save(context.Background(), user, "tok-1"))
}

func TestCommands_AllRegistered(t *testing.T) {
	cmds := commands()
	for _, name := range []string{
		"login", "register", "logout", "whoami", "incidents",
		"incident", "report", "update-status", "admin-dashboard",
	} {
		cmd, ok := cmds[name]
		require.True(t, ok, name)
		assert.Equal(t, name, cmd.name)
		assert.NotEmpty(t, cmd.description)
		assert.NotNil(t, cmd.run)
	}
}

func TestPrintUsage_SortedCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	assert.Contains(t, out, "Usage: alertautec <command> [flags]")
	assert.Less(t, strings.Index(out, "admin-dashboard"), strings.Index(out, "whoami"))
	assert.Less(t, strings.Index(out, "  incident "), strings.Index(out, "  incidents "))
}

func TestExitCode(t *testing.T) {
	h := newCLIHarness(t)
	cmdCtx := h.context("")

	assert.Equal(t, 0, exitCode(cmdCtx, "x", nil))
	assert.Equal(t, 0, exitCode(cmdCtx, "x", flag.ErrHelp))
	assert.Empty(t, h.errOut.String())

	assert.Equal(t, 2, exitCode(cmdCtx, "x", usagef("--id is required")))
	assert.Contains(t, h.errOut.String(), "error: --id is required")

	assert.Equal(t, 1, exitCode(cmdCtx, "x", apperrors.Unauthorized("not signed in")))
	assert.Equal(t, 1, exitCode(cmdCtx, "x", errors.New("boom")))
}

func TestParseFlags_RejectsPositionalArgs(t *testing.T) {
	h := newCLIHarness(t)
	fs := newFlagSet(h.context(""), "test")

	err := parseFlags(fs, []string{"extra"})

	var ue usageError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, err.Error(), "unexpected arguments")
}

func TestParseFlags_UnknownFlagIsUsageError(t *testing.T) {
	h := newCLIHarness(t)
	fs := newFlagSet(h.context(""), "test")

	err := parseFlags(fs, []string{"--nope"})

	var ue usageError
	require.ErrorAs(t, err, &ue)
}

func TestRunLogin_PersistsSession(t *testing.T) {
	h := newCLIHarness(t)

	err := h.run(t, "login", "--email", "ana@utec.edu.pe", "--password", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Signed in as Ana Ruiz <ana@utec.edu.pe> (estudiante)\n", h.out.String())

	calls := h.backend.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"tenant_id": "ana@utec.edu.pe", "password": "secret"}, calls[0].Body)
	assert.Empty(t, calls[0].Auth)

	token, ok, err := h.store.Get(context.Background(), "alertautec_token")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestRunLogin_PasswordFromPrompt(t *testing.T) {
	t.Setenv(passwordEnv, "")
	h := newCLIHarness(t)
	cmdCtx := h.context("secret\n")

	require.NoError(t, runLogin(cmdCtx, []string{"--email", "ana@utec.edu.pe"}))
	assert.Contains(t, h.errOut.String(), "Contraseña: ")
	assert.Contains(t, h.out.String(), "Signed in as Ana Ruiz")
}

func TestRunLogin_PasswordFromEnv(t *testing.T) {
	t.Setenv(passwordEnv, "secret")
	h := newCLIHarness(t)

	require.NoError(t, h.run(t, "login", "--email", "ana@utec.edu.pe"))
	assert.NotContains(t, h.errOut.String(), "Contraseña")
}

func TestRunLogin_ValidationFailsBeforeAnyRequest(t *testing.T) {
	tests := []struct {
		name  string
		email string
		field string
	}{
		{name: "not an address", email: "ana", field: "email"},
		{name: "foreign domain", email: "ana@gmail.com", field: "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCLIHarness(t)

			err := h.run(t, "login", "--email", tt.email, "--password", "secret")

			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.field, apperrors.GetField(err))
			assert.Empty(t, h.backend.calls())
		})
	}
}

func TestRunLogin_SubdomainAccepted(t *testing.T) {
	h := newCLIHarness(t)
	require.NoError(t, h.run(t, "login", "--email", "ana@alumnos.utec.edu.pe", "--password", "secret"))
}

func TestRunLogin_MissingEmailIsUsageError(t *testing.T) {
	h := newCLIHarness(t)

	err := h.run(t, "login", "--password", "secret")

	var ue usageError
	require.ErrorAs(t, err, &ue)
}

func TestRunLogin_APIErrorSurfacesMessage(t *testing.T) {
	h := newCLIHarness(t)

	err := h.run(t, "login", "--email", "ana@utec.edu.pe", "--password", "wrong")

	require.Error(t, err)
	assert.Equal(t, "Credenciales inválidas", err.Error())
	assert.Equal(t, 0, h.store.Len())
}

func TestRunRegister_RegistersThenSignsIn(t *testing.T) {
	h := newCLIHarness(t)

	err := h.run(t, "register",
		"--nombre", "Ana", "--apellido", "Ruiz",
		"--email", "ana@utec.edu.pe", "--password", "secret", "--role", "staff")
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "Account created. Signed in as Ana Ruiz")

	calls := h.backend.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/users/register", calls[0].Path)
	assert.Equal(t, "staff", calls[0].Body["role"])
	assert.Equal(t, "ana@utec.edu.pe", calls[0].Body["tenant_id"])
	assert.Equal(t, "/users/login", calls[1].Path)
}

func TestRunRegister_InvalidRole(t *testing.T) {
	h := newCLIHarness(t)

	err := h.run(t, "register",
		"--nombre", "Ana", "--apellido", "Ruiz",
		"--email", "ana@utec.edu.pe", "--password", "secret", "--role", "rector")

	require.Error(t, err)
	assert.Equal(t, "role", apperrors.GetField(err))
	assert.Empty(t, h.backend.calls())
}

func TestRunLogout_ClearsSession(t *testing.T) {
	h := newCLIHarness(t)
	h.signIn(t, domainauth.RoleEstudiante)

	require.NoError(t, h.run(t, "logout"))
	assert.Equal(t, "Signed out.\n", h.out.String())
	assert.Equal(t, 0, h.store.Len())
}

func TestRunWhoami(t *testing.T) {
	h := newCLIHarness(t)

	err := h.run(t, "whoami")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))

	h.signIn(t, domainauth.RoleAutoridad)
	require.NoError(t, h.run(t, "whoami"))
	out := h.out.String()
	assert.Contains(t, out, "Name:  Ana Ruiz")
	assert.Contains(t, out, "Admin: yes")
	assert.Contains(t, out, "Token: opaque")

	require.NoError(t, h.run(t, "whoami", "--json"))
	var view map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &view))
	assert.Equal(t, true, view["isAdmin"])
	assert.Equal(t, "u1", view["user"].(map[string]any)["id"])
}

func TestRunIncidents_Table(t *testing.T) {
	h := newCLIHarness(t)
	h.signIn(t, domainauth.RoleEstudiante)

	require.NoError(t, h.run(t, "incidents"))

	out := h.out.String()
	assert.Contains(t, out, "REPORTED BY")
	assert.Contains(t, out, "i1")
	assert.Contains(t, out, "resuelto")
	assert.NotContains(t, out, "resuelta")

	calls := h.backend.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer tok-1", calls[0].Auth)
}

func TestRunIncidents_JSONAndQuery(t *testing.T) {
	h := newCLIHarness(t)
	h.signIn(t, domainauth.RoleEstudiante)

	require.NoError(t, h.run(t, "incidents", "--json"))
	var list []map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "resuelto", list[1]["status"])

	require.NoError(t, h.run(t, "incidents", "--query", "[?urgency=='alta'].id"))
	var ids []string
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &ids))
	assert.Equal(t, []string{"i1"}, ids)

	err := h.run(t, "incidents", "--query", "[?urgency==")
	require.Error(t, err)
	assert.Equal(t, "query", apperrors.GetField(err))
}

func TestRunIncidents_Empty(t *testing.T) {
	h := newCLIHarness(t)
	h.signIn(t, domainauth.RoleEstudiante)
	h.backend.setHistory(nil)

	require.NoError(t, h.run(t, "incidents"))
	assert.Equal(t, "No incidents found.\n", h.out.String())
}

func TestRunIncident(t *testing.T) {
	h := newCLIHarness(t)
	h.signIn(t, domainauth.RoleEstudiante)

	require.NoError(t, h.run(t, "incident", "--id", "i2"))
	assert.Contains(t, h.out.String(), "Fuga de agua")
	assert.Contains(t, h.out.String(), "Luis Paz (staff)")

	err := h.run(t, "incident", "--id", "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	err = h.run(t, "incident")
	var ue usageError
	require.ErrorAs(t, err, &ue)
}

func TestRunReport(t *testing.T) {
	h := newCLIHarness(t)
	h.signIn(t, domainauth.RoleEstudiante)

	err := h.run(t, "report", "--type", "Robo", "--location", "Pabellón B",
		"--description", "Laptop robada", "--urgency", "ALTA", "--json")
	require.NoError(t, err)

	var inc map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &inc))
	assert.Equal(t, "i9", inc["id"])
	assert.Equal(t, "pendiente", inc["status"])
	assert.Equal(t, "alta", inc["urgency"])

	calls := h.backend.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/incidents/create", calls[0].Path)
	assert.Equal(t, "Ana Ruiz", calls[0].Body["reportado_por_nombre"])
	assert.Equal(t, "estudiante", calls[0].Body["role"])
	assert.Equal(t, "alta", calls[0].Body["gravedad"])
}

func TestRunReport_RequiresSession(t *testing.T) {
	h := newCLIHarness(t)

	err := h.run(t, "report", "--type", "Robo", "--location", "B", "--description", "x")

	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Empty(t, h.backend.calls())
}

func TestRunReport_Validation(t *testing.T) {
	h := newCLIHarness(t)
	h.signIn(t, domainauth.RoleEstudiante)

	err := h.run(t, "report", "--type", "Robo", "--urgency", "critica")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "description", apperrors.GetField(err))
	assert.Contains(t, err.Error(), "Urgencia")
	assert.Empty(t, h.backend.calls())
}

func TestRunUpdateStatus(t *testing.T) {
	h := newCLIHarness(t)
	h.signIn(t, domainauth.RoleStaff)

	require.NoError(t, h.run(t, "update-status", "--id", "i1", "--status", "en_atencion"))
	assert.Equal(t, "Incident i1 set to en_atencion.\n", h.out.String())

	calls := h.backend.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, map[string]any{"incidente_id": "i1", "fase": "en_proceso"}, calls[0].Body)

	err := h.run(t, "update-status", "--id", "i1", "--status", "cerrado")
	require.Error(t, err)
	assert.Equal(t, "status", apperrors.GetField(err))
}

func TestRunUpdateStatus_NoSession(t *testing.T) {
	h := newCLIHarness(t)

	err := h.run(t, "update-status", "--id", "i1", "--status", "resuelto")

	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Empty(t, h.backend.calls())
}

func TestRunAdminDashboard(t *testing.T) {
	h := newCLIHarness(t)

	h.signIn(t, domainauth.RoleStaff)
	err := h.run(t, "admin-dashboard")
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Empty(t, h.backend.calls())

	h.signIn(t, domainauth.RoleAutoridad)
	require.NoError(t, h.run(t, "admin-dashboard"))
	assert.Contains(t, h.out.String(), "Total incidents: 2 (open: 1)")

	require.NoError(t, h.run(t, "admin-dashboard", "--json"))
	var sum map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &sum))
	assert.InDelta(t, 2, sum["total"], 0)
	assert.Equal(t, "2025-03-02T10:00:00.000Z", sum["latestCreatedAt"])
}

func TestWithApp_ConfigError(t *testing.T) {
	h := newCLIHarness(t)
	cmdCtx := h.context("")
	cmdCtx.newApp = nil
	cmdCtx.Config.API.URL = ""

	err := withApp(cmdCtx, func(*bootstrap.App) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_URL")
}

func TestRunIncidents_RequireSession(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "incidents", args: nil},
		{name: "incidents", args: []string{"--query", "[].id"}},
		{name: "incident", args: []string{"--id", "i1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name+" "+strings.Join(tt.args, " "), func(t *testing.T) {
			h := newCLIHarness(t)

			err := h.run(t, tt.name, tt.args...)

			require.Error(t, err)
			assert.True(t, apperrors.IsUnauthorized(err))
			assert.Equal(t, "not signed in", err.Error())
			assert.Empty(t, h.backend.calls())
		})
	}
}

func TestRunIncidents_QueryTooLong(t *testing.T) {
	h := newCLIHarness(t)
	h.signIn(t, domainauth.RoleEstudiante)

	err := h.run(t, "incidents", "--query", strings.Repeat("a", maxQueryLen+1))

	require.Error(t, err)
	assert.Equal(t, "query", apperrors.GetField(err))
	assert.Empty(t, h.backend.calls())
}

func TestIncidentIDValidation(t *testing.T) {
	h := newCLIHarness(t)
	h.signIn(t, domainauth.RoleStaff)

	for _, args := range [][]string{
		{"incident", "--id", "i 1"},
		{"update-status", "--id", "../i1", "--status", "resuelto"},
	} {
		err := h.run(t, args[0], args[1:]...)
		require.Error(t, err, args)
		assert.Equal(t, "id", apperrors.GetField(err))
	}
	assert.Empty(t, h.backend.calls())
}

func TestRunRegister_PasswordTooShort(t *testing.T) {
	h := newCLIHarness(t)

	err := h.run(t, "register",
		"--nombre", "Ana", "--apellido", "Ruiz",
		"--email", "ana@utec.edu.pe", "--password", "abc")

	require.Error(t, err)
	assert.Equal(t, "password", apperrors.GetField(err))
	assert.Empty(t, h.backend.calls())
}

func TestReadPassword_NonTerminalFileReadsLine(t *testing.T) {
	t.Setenv(passwordEnv, "")
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	_, err = w.WriteString("secret\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	h := newCLIHarness(t)
	cmdCtx := h.context("")
	cmdCtx.In = r

	got, err := readPassword(cmdCtx, "")
	require.NoError(t, err)
	assert.Equal(t, "secret", got)
	assert.Equal(t, "Contraseña: ", h.errOut.String())
}
