//go:build staging

package staging

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func containsBytes(body []byte, s string) bool {
	return strings.Contains(string(body), s)
}

func TestStatus(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/api/v1/status", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var status struct {
		Connection string   `json:"connection"`
		Policy     string   `json:"policy"`
		Topics     []string `json:"topics"`
	}
	decode(t, body, &status)
	if status.Connection == "" || status.Policy == "" {
		t.Errorf("Expected connection and policy, got %s", body)
	}
}

func TestItems(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/api/v1/items", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var items struct {
		Count int           `json:"count"`
		Items []interface{} `json:"items"`
	}
	decode(t, body, &items)
	if items.Count != len(items.Items) {
		t.Errorf("Count %d does not match %d items", items.Count, len(items.Items))
	}
}

func TestDiagnosticsLimitValidation(t *testing.T) {
	resp, _ := makeRequest(t, "GET", "/api/v1/diagnostics?limit=0", nil, false)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestSetTopicsRequiresKey(t *testing.T) {
	if apiKey == "" {
		t.Skip("API_KEY not set; mutating routes are open")
	}

	resp, _ := makeRequest(t, "PUT", "/api/v1/topics", map[string][]string{"topics": {"csgo"}}, false)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without key, got %d", resp.StatusCode)
	}
}

func TestSetTopicsRejectsUnknown(t *testing.T) {
	resp, _ := makeRequest(t, "PUT", "/api/v1/topics", map[string][]string{"topics": {"minecraft"}}, true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestStreamSendsInitialState(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", stagingURL+"/api/v1/stream", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to open stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Expected text/event-stream, got %q", ct)
	}

	want := map[string]bool{"connected": false, "items.snapshot": false, "connection.state": false}
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "event: ") {
			continue
		}
		name := strings.TrimPrefix(line, "event: ")
		if _, ok := want[name]; ok {
			want[name] = true
		}
		if want["connected"] && want["items.snapshot"] && want["connection.state"] {
			return
		}
	}
	t.Errorf("Missing initial events: %v", want)
}
