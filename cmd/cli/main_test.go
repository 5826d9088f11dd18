package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestBalanceCmdFetchesFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/wallets/user-1/balance" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("currency"); got != "USD" {
			t.Errorf("unexpected currency %q", got)
		}
		w.Write([]byte(`{"user_id":"user-1","currency":"USD","total":"100"}`))
	}))
	defer srv.Close()

	origURL := baseURL
	baseURL = srv.URL
	defer func() { baseURL = origURL }()

	cmd := balanceCmd()
	cmd.SetArgs([]string{"user-1", "--currency", "USD"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Errorf("command failed: %v", err)
		}
	})

	if !strings.Contains(out, `"total": "100"`) {
		t.Fatalf("expected balance in output, got %q", out)
	}
}

func TestApproveCmdPostsDecision(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/approvals/tr-1/approve" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Write([]byte(`{"id":"tr-1","status":"approved"}`))
	}))
	defer srv.Close()

	origURL := baseURL
	baseURL = srv.URL
	defer func() { baseURL = origURL }()

	cmd := approveCmd()
	cmd.SetArgs([]string{"tr-1", "--actor", "reviewer-1"})

	captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Errorf("command failed: %v", err)
		}
	})

	if !strings.Contains(gotBody, `"actor":"reviewer-1"`) {
		t.Fatalf("expected actor in request body, got %q", gotBody)
	}
}

func TestPrintResponseErrorStatus(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusForbidden,
		Body:       io.NopCloser(strings.NewReader(`{"error":"rejected"}`)),
	}

	var err error
	captureOutput(t, func() {
		err = printResponse(resp)
	})

	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status error, got %v", err)
	}
}
