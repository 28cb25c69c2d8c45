package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	handler "github.com/vncsmyrnk/quickpolls/internal/adapters/handler/http"
	pgrepo "github.com/vncsmyrnk/quickpolls/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/services"
	"github.com/vncsmyrnk/quickpolls/internal/metrics"
)

const testSecret = "test-secret"

type TestApp struct {
	DB        *sql.DB
	Server    *httptest.Server
	Client    *http.Client
	Auth      *services.AuthService
	Container testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// setupTestApp wires the production stack against a fresh postgres.
func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	container, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	require.NoError(t, applyMigrations(db))

	pollRepo := pgrepo.NewPollRepository(db)
	ledger := pgrepo.NewVoteRepository(db)
	voters := pgrepo.NewVoterRepository(db)

	auth := services.NewAuthService(testSecret)
	resolver := services.NewIdentityResolver(voters)
	pollSvc := services.NewPollService(pollRepo, nil)
	m := metrics.NewAdmissionMetrics("quickpolls")
	voteSvc := services.NewVoteService(pollRepo, ledger, services.NewChoiceValidator(), services.WithAdmissionRecorder(m))
	statsSvc := services.NewStatsService(pollRepo, ledger, nil)

	router := handler.NewHandler(
		handler.NewPollHandler(pollSvc, voteSvc, resolver),
		handler.NewVoteHandler(voteSvc, resolver),
		handler.NewResultHandler(pollSvc, statsSvc),
		handler.NewIdentityMiddleware(auth, "quickpollscid"),
		m.Handler(),
		[]string{"*"},
	)
	server := httptest.NewServer(router)

	return &TestApp{
		DB:        db,
		Server:    server,
		Client:    server.Client(),
		Auth:      auth,
		Container: container,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.Container.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

func createToken(t *testing.T, app *TestApp, admin bool) string {
	t.Helper()
	token, err := app.Auth.IssueAccessToken(uuid.New(), admin, 15*time.Minute)
	require.NoError(t, err)
	return token
}

func (app *TestApp) do(t *testing.T, method, path string, body any, token, clientID string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, app.Server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}
	if clientID != "" {
		req.Header.Set("X-Client-Id", clientID)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (app *TestApp) createPoll(t *testing.T, payload map[string]any) domain.Poll {
	t.Helper()
	resp := app.do(t, http.MethodPost, "/api/polls", payload, createToken(t, app, true), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var poll domain.Poll
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&poll))
	return poll
}
