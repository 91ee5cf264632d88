//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"testing"
	"time"
)

// The e2e suite drives a running server over HTTP. It needs a fresh
// database: the first user registered must receive id 1.
//
//	E2E_BASE_URL=http://localhost:8080 go test -tags e2e ./tests/e2e/

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type errorsResponse struct {
	Errors map[string]string `json:"errors"`
}

type todoResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type todoListResponse struct {
	Todos []todoResponse `json:"todos"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("E2E_BASE_URL", "http://localhost:8080")

	alice := newClient(t)
	waitForReady(t, baseURL)

	// Sign up the first user. A fresh database hands out id 1.
	user := doRequest[userResponse](t, alice, http.MethodPost, baseURL+"/api/user",
		`{"username":"alice","password":"correct horse battery","confirmPassword":"correct horse battery"}`,
		http.StatusCreated)
	if user.ID != 1 || user.Username != "alice" {
		t.Fatalf("unexpected sign-up response: %+v", user)
	}

	// The sign-up cookie authenticates follow-up requests.
	me := doRequest[userResponse](t, alice, http.MethodGet, baseURL+"/api/user", "", http.StatusOK)
	if me.ID != user.ID || me.Username != "alice" {
		t.Fatalf("unexpected current user: %+v", me)
	}

	// Unknown usernames fail exactly like wrong passwords.
	bob := newClient(t)
	failure := doRequest[errorsResponse](t, bob, http.MethodPost, baseURL+"/api/session",
		`{"username":"bob","password":"whatever"}`, http.StatusUnauthorized)
	if failure.Errors["username"] == "" || failure.Errors["username"] != failure.Errors["password"] {
		t.Fatalf("expected identical errors on both fields, got %+v", failure.Errors)
	}

	// Todo lifecycle.
	created := doRequest[todoResponse](t, alice, http.MethodPost, baseURL+"/api/todo/",
		`{"name":"buy milk"}`, http.StatusCreated)
	if created.Name != "buy milk" || created.Completed {
		t.Fatalf("unexpected created todo: %+v", created)
	}

	todoPath := fmt.Sprintf("%s/api/todo/%d", baseURL, created.ID)
	updated := doRequest[todoResponse](t, alice, http.MethodPatch, todoPath,
		`{"completed":true}`, http.StatusOK)
	if !updated.Completed || updated.Name != "buy milk" {
		t.Fatalf("unexpected updated todo: %+v", updated)
	}

	list := doRequest[todoListResponse](t, alice, http.MethodGet, baseURL+"/api/todo/", "", http.StatusOK)
	if len(list.Todos) != 1 || !list.Todos[0].Completed {
		t.Fatalf("unexpected todo list: %+v", list.Todos)
	}

	doRequestStatus(t, alice, http.MethodDelete, todoPath, "", http.StatusNoContent)
	list = doRequest[todoListResponse](t, alice, http.MethodGet, baseURL+"/api/todo/", "", http.StatusOK)
	if len(list.Todos) != 0 {
		t.Fatalf("expected an empty list after delete, got %+v", list.Todos)
	}

	// Sign out, then the cookie no longer works.
	doRequestStatus(t, alice, http.MethodDelete, baseURL+"/api/session", "", http.StatusNoContent)
	doRequestStatus(t, alice, http.MethodGet, baseURL+"/api/user", "", http.StatusUnauthorized)

	// Signing back in restores access to the same account.
	again := doRequest[userResponse](t, alice, http.MethodPost, baseURL+"/api/session",
		`{"username":"alice","password":"correct horse battery"}`, http.StatusOK)
	if again.ID != user.ID {
		t.Fatalf("expected the same account after re-sign-in, got %+v", again)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func waitForReady(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(time.Second)
	}
	t.Fatalf("server at %s never became ready", baseURL)
}

func doRequest[T any](t *testing.T, client *http.Client, method, url, body string, wantStatus int) T {
	t.Helper()

	resp := send(t, client, method, url, body, wantStatus)
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, url, err)
	}
	return out
}

func doRequestStatus(t *testing.T, client *http.Client, method, url, body string, wantStatus int) {
	t.Helper()
	resp := send(t, client, method, url, body, wantStatus)
	resp.Body.Close()
}

func send(t *testing.T, client *http.Client, method, url, body string, wantStatus int) *http.Response {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("%s %s: build request: %v", method, url, err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	if resp.StatusCode != wantStatus {
		resp.Body.Close()
		t.Fatalf("%s %s: expected status %d, got %d", method, url, wantStatus, resp.StatusCode)
	}
	return resp
}
