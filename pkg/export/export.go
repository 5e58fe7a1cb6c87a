// Package export writes tank debug logs to timestamped JSON files and
// summarizes them.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/picogrid/tank-arena/pkg/arena"
	"github.com/picogrid/tank-arena/pkg/logger"
)

// TimestampFormat is the file name timestamp layout
const TimestampFormat = "20060102_150405"

// Data maps tank names to their debug events, oldest first
type Data map[string][]arena.DebugEvent

// TankFile is the content of a per-tank export file
type TankFile struct {
	TankName        string             `json:"tank_name"`
	ExportTimestamp string             `json:"export_timestamp"`
	TotalEvents     int                `json:"total_events"`
	Events          []arena.DebugEvent `json:"events"`
}

// CombinedFile is the content of the all-tanks export file
type CombinedFile struct {
	ExportTimestamp string `json:"export_timestamp"`
	TotalBots       int    `json:"total_bots"`
	BotData         Data   `json:"bot_data"`
}

// Result lists the files written by Write
type Result struct {
	TankFiles    map[string]string
	CombinedFile string
}

// Fetch downloads debug data from a running arena server
func Fetch(ctx context.Context, client *http.Client, baseURL string) (Data, error) {
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimRight(baseURL, "/") + "/api/debug-data"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not connect to arena server at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arena server returned %s", resp.Status)
	}

	var data Data
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode debug data: %w", err)
	}
	return data, nil
}

// Write exports one file per tank plus a combined file into dir, creating
// it if needed. File names carry now as a timestamp.
func Write(dir string, data Data, now time.Time) (*Result, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating directory: %w", err)
		}
		logger.Infof("Created directory: %s", dir)
	}

	stamp := now.Format(TimestampFormat)
	exported := now.Format(time.RFC3339)
	result := &Result{TankFiles: make(map[string]string, len(data))}

	for _, name := range sortedNames(data) {
		events := data[name]
		if events == nil {
			events = []arena.DebugEvent{}
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", safeName(name), stamp))
		file := TankFile{
			TankName:        name,
			ExportTimestamp: exported,
			TotalEvents:     len(events),
			Events:          events,
		}
		if err := writeJSON(path, file); err != nil {
			return nil, err
		}
		result.TankFiles[name] = path
		logger.Debugf("Exported %d events for %s to %s", len(events), name, path)
	}

	combined := filepath.Join(dir, fmt.Sprintf("all_bots_%s.json", stamp))
	if err := writeJSON(combined, CombinedFile{
		ExportTimestamp: exported,
		TotalBots:       len(data),
		BotData:         data,
	}); err != nil {
		return nil, err
	}
	result.CombinedFile = combined

	return result, nil
}

func writeJSON(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

// safeName keeps tank names from escaping the export directory
func safeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_")
	name = replacer.Replace(strings.TrimSpace(name))
	if name == "" {
		return "tank"
	}
	return name
}

func sortedNames(data Data) []string {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
