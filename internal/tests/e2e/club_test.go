//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/bounce-app/apiserver/config"
	"github.com/bounce-app/apiserver/internal/server"
	_ "github.com/lib/pq"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestClubLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	suffix := time.Now().UnixNano()
	password := "Testpass123!"

	founder := registerAndLogin(t, baseURL, fmt.Sprintf("founder%d", suffix), password)
	admin := registerAndLogin(t, baseURL, fmt.Sprintf("admin%d", suffix), password)
	member := registerAndLogin(t, baseURL, fmt.Sprintf("member%d", suffix), password)

	clubName := fmt.Sprintf("chess-%d", suffix)
	club := createClub(t, baseURL, founder.Token, clubName)
	if club.Name != clubName {
		t.Fatalf("unexpected club name: %q", club.Name)
	}

	// The founder comes back on the roster as President.
	roster := listMembers(t, baseURL, founder.Token, clubName)
	if len(roster) != 1 {
		t.Fatalf("expected 1 member after creation, got %d", len(roster))
	}
	if roster[0].Role != "President" {
		t.Fatalf("founder role = %q, want President", roster[0].Role)
	}

	addMember(t, baseURL, founder.Token, clubName, admin.User.ID, "Admin", "Events")
	addMember(t, baseURL, admin.Token, clubName, member.User.ID, "Member", "")

	// A Member must not be able to add anyone.
	status := addMemberStatus(t, baseURL, member.Token, clubName, founder.User.ID, "Member", "")
	if status != http.StatusForbidden {
		t.Fatalf("member invite status = %d, want 403", status)
	}

	// An Admin cannot touch a President.
	status = updateMemberStatus(t, baseURL, admin.Token, clubName, founder.User.ID, "Member")
	if status != http.StatusForbidden {
		t.Fatalf("admin demote president status = %d, want 403", status)
	}

	// The President can demote the Admin.
	status = updateMemberStatus(t, baseURL, founder.Token, clubName, admin.User.ID, "Member")
	if status != http.StatusOK {
		t.Fatalf("president demote admin status = %d, want 200", status)
	}

	// Roster reset keeps only Presidents.
	removed := removeAll(t, baseURL, founder.Token, clubName)
	if removed != 2 {
		t.Fatalf("remove all removed %d, want 2", removed)
	}
	roster = listMembers(t, baseURL, founder.Token, clubName)
	if len(roster) != 1 {
		t.Fatalf("expected 1 member after reset, got %d", len(roster))
	}

	deleteClub(t, baseURL, founder.Token, clubName)

	status = getClubStatus(t, baseURL, clubName)
	if status != http.StatusNotFound {
		t.Fatalf("deleted club status = %d, want 404", status)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	suffix := time.Now().UnixNano()
	username := fmt.Sprintf("badpass%d", suffix)

	registerAndLogin(t, baseURL, username, "Testpass123!")

	status := loginStatus(t, baseURL, username, "Wrongpass123!")
	if status != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", status)
	}
	status = loginStatus(t, baseURL, fmt.Sprintf("nouser%d", suffix), "Wrongpass123!")
	if status != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d, want 401", status)
	}
}

type userResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type clubResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type memberResponse struct {
	UserID   int    `json:"user_id"`
	Role     string `json:"role"`
	Position string `json:"position"`
}

func registerAndLogin(t *testing.T, baseURL, username, password string) authResponse {
	t.Helper()

	payload := map[string]string{
		"username":  username,
		"email":     fmt.Sprintf("%s@example.com", username),
		"full_name": "Test User",
		"password":  password,
	}
	status, _ := postJSON(t, baseURL+"/users", "", payload, nil)
	if status != http.StatusCreated {
		t.Fatalf("register status %d", status)
	}

	var parsed authResponse
	status, _ = postJSON(t, baseURL+"/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &parsed)
	if status != http.StatusOK {
		t.Fatalf("login status %d", status)
	}
	if parsed.Token == "" {
		t.Fatalf("missing token in login response")
	}
	return parsed
}

func loginStatus(t *testing.T, baseURL, username, password string) int {
	t.Helper()
	status, _ := postJSON(t, baseURL+"/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	return status
}

func createClub(t *testing.T, baseURL, token, name string) clubResponse {
	t.Helper()

	var parsed clubResponse
	status, body := postJSON(t, baseURL+"/clubs", token, map[string]string{
		"name":        name,
		"description": "A club for testing",
	}, &parsed)
	if status != http.StatusCreated {
		t.Fatalf("create club status %d: %s", status, body)
	}
	return parsed
}

func getClubStatus(t *testing.T, baseURL, name string) int {
	t.Helper()
	status, _ := doRequest(t, http.MethodGet, baseURL+"/clubs/"+name, "", nil, nil)
	return status
}

func deleteClub(t *testing.T, baseURL, token, name string) {
	t.Helper()
	status, body := doRequest(t, http.MethodDelete, baseURL+"/clubs/"+name, token, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete club status %d: %s", status, body)
	}
}

func addMember(t *testing.T, baseURL, token, clubName string, userID int, role, position string) {
	t.Helper()
	status := addMemberStatus(t, baseURL, token, clubName, userID, role, position)
	if status != http.StatusCreated {
		t.Fatalf("add member status %d", status)
	}
}

func addMemberStatus(t *testing.T, baseURL, token, clubName string, userID int, role, position string) int {
	t.Helper()
	status, _ := postJSON(t, fmt.Sprintf("%s/clubs/%s/members", baseURL, clubName), token, map[string]any{
		"user_id":  userID,
		"role":     role,
		"position": position,
	}, nil)
	return status
}

func updateMemberStatus(t *testing.T, baseURL, token, clubName string, userID int, role string) int {
	t.Helper()
	payload := map[string]string{"role": role}
	status, _ := doRequest(t, http.MethodPut, fmt.Sprintf("%s/clubs/%s/members/%d", baseURL, clubName, userID), token, payload, nil)
	return status
}

func listMembers(t *testing.T, baseURL, token, clubName string) []memberResponse {
	t.Helper()
	var parsed []memberResponse
	status, body := doRequest(t, http.MethodGet, fmt.Sprintf("%s/clubs/%s/members", baseURL, clubName), token, nil, &parsed)
	if status != http.StatusOK {
		t.Fatalf("list members status %d: %s", status, body)
	}
	return parsed
}

func removeAll(t *testing.T, baseURL, token, clubName string) int {
	t.Helper()
	var parsed struct {
		Removed int `json:"removed"`
	}
	status, body := doRequest(t, http.MethodDelete, fmt.Sprintf("%s/clubs/%s/members", baseURL, clubName), token, nil, &parsed)
	if status != http.StatusOK {
		t.Fatalf("remove all status %d: %s", status, body)
	}
	return parsed.Removed
}

func postJSON(t *testing.T, url, token string, payload any, out any) (int, string) {
	t.Helper()
	return doRequest(t, http.MethodPost, url, token, payload, out)
}

func doRequest(t *testing.T, method, url, token string, payload any, out any) (int, string) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode, strings.TrimSpace(string(raw))
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	migrationsPath := filepath.Join(root, "internal", "db", "migrations")
	migrationsURL := "file://" + migrationsPath

	migrator, err := migrate.New(migrationsURL, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func buildPostgresURL(cfg config.Config) string {
	sslmode := "disable"
	if cfg.Database.UseSSL {
		sslmode = "require"
	}
	host := fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		host,
		cfg.Database.DBName,
		sslmode,
	)
}

func startServer() (*server.Server, error) {
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "bounce")
	_ = os.Setenv("DB_PASSWORD", "bounce")
	_ = os.Setenv("DB_NAME", "bounce")
	_ = os.Setenv("DB_USE_SSL", "false")

	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
