package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	healthTimeout  = 5 * time.Second
	slowHealthTime = time.Second
)

type HealthCheckCommand struct{}

func (c *HealthCheckCommand) Name() string {
	return "health-check"
}

func (c *HealthCheckCommand) Description() string {
	return "Check liveness, readiness and version of a running " + appName
}

func (c *HealthCheckCommand) Run(args []string) error {
	base := apiURL()
	if len(args) > 0 {
		base = args[0]
	}

	PrintHeader(fmt.Sprintf("Health Check (%s)", base))
	client := &http.Client{Timeout: healthTimeout}

	start := time.Now()
	if _, err := get(client, base+"/healthz"); err != nil {
		PrintError("Liveness check failed: %v", err)
		return err
	}
	if duration := time.Since(start); duration > slowHealthTime {
		PrintWarning("Slow liveness response (%v)", duration)
	} else {
		PrintSuccess("Live (response time: %v)", duration)
	}

	if body, err := get(client, base+"/readyz"); err != nil {
		PrintWarning("Not ready: %v", err)
	} else {
		PrintSuccess("Ready: %s", body)
	}

	body, err := get(client, base+"/version")
	if err != nil {
		return err
	}
	var info struct {
		Version   string `json:"version"`
		GitCommit string `json:"git_commit"`
	}
	if err := json.Unmarshal(body, &info); err == nil {
		PrintInfo("Version %s (%s)", info.Version, info.GitCommit)
	}
	return nil
}

func get(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return body, fmt.Errorf("unexpected status %s: %s", resp.Status, body)
	}
	return body, nil
}
