package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
)

const defaultWatchEvents = 10

type WatchStreamCommand struct{}

func (c *WatchStreamCommand) Name() string {
	return "watch-stream"
}

func (c *WatchStreamCommand) Description() string {
	return "Print events from the SSE stream ([count] [type,type...])"
}

func (c *WatchStreamCommand) Run(args []string) error {
	limit := defaultWatchEvents
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("count must be a positive number: %q", args[0])
		}
		limit = n
	}

	url := apiURL() + "/api/v1/stream"
	if len(args) > 1 {
		url += "?types=" + args[1]
	}

	PrintHeader(fmt.Sprintf("Watching %s", url))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	seen := 0
	var eventType string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			PrintInfo("%s", eventType)
			fmt.Println(truncateLine(data, 400))
			seen++
			if seen >= limit {
				PrintSuccess("Received %d events", seen)
				return nil
			}
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream closed after %d events", seen)
}

func truncateLine(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
