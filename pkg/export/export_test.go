package export

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/picogrid/tank-arena/pkg/arena"
)

var base = time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)

func sampleData() Data {
	return Data{
		"Alpha": {
			{Time: base, Event: arena.EventMove, Data: map[string]interface{}{"new_x": 10.0, "new_y": 20.0}},
			{Time: base.Add(time.Second), Event: arena.EventMove, Data: map[string]interface{}{"new_x": 12.0, "new_y": 20.0}},
			{Time: base.Add(2 * time.Second), Event: arena.EventShoot},
			{Time: base.Add(4 * time.Second), Event: arena.EventRotate, Data: map[string]interface{}{"angle": 3.0}},
		},
		"Bravo": {},
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	result, err := Write(dir, sampleData(), base)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	alphaPath := filepath.Join(dir, "Alpha_20240309_143005.json")
	if result.TankFiles["Alpha"] != alphaPath {
		t.Errorf("Expected %s, got %s", alphaPath, result.TankFiles["Alpha"])
	}

	raw, err := os.ReadFile(alphaPath)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	var file TankFile
	if err := json.Unmarshal(raw, &file); err != nil {
		t.Fatalf("Failed to decode export: %v", err)
	}
	if file.TankName != "Alpha" || file.TotalEvents != 4 || len(file.Events) != 4 {
		t.Errorf("Unexpected tank file: %+v", file)
	}
	if file.Events[0].Event != arena.EventMove || file.Events[0].Data["new_x"] != 10.0 {
		t.Errorf("Unexpected first event: %+v", file.Events[0])
	}

	raw, err = os.ReadFile(filepath.Join(dir, "Bravo_20240309_143005.json"))
	if err != nil {
		t.Fatalf("Failed to read empty export: %v", err)
	}
	if !strings.Contains(string(raw), `"events": []`) {
		t.Errorf("Expected an empty events array, got %s", raw)
	}

	if result.CombinedFile != filepath.Join(dir, "all_bots_20240309_143005.json") {
		t.Errorf("Unexpected combined file %s", result.CombinedFile)
	}
	raw, err = os.ReadFile(result.CombinedFile)
	if err != nil {
		t.Fatalf("Failed to read combined export: %v", err)
	}
	var combined CombinedFile
	if err := json.Unmarshal(raw, &combined); err != nil {
		t.Fatalf("Failed to decode combined export: %v", err)
	}
	if combined.TotalBots != 2 || len(combined.BotData["Alpha"]) != 4 {
		t.Errorf("Unexpected combined file: %+v", combined)
	}
}

func TestSafeName(t *testing.T) {
	for _, name := range []string{"../evil", "a/b", `c\d`, "  "} {
		got := safeName(name)
		if strings.ContainsAny(got, `/\`) || strings.Contains(got, "..") || got == "" {
			t.Errorf("safeName(%q) = %q is not a plain file name", name, got)
		}
	}
	if safeName("Alpha_2") != "Alpha_2" {
		t.Errorf("Expected ordinary names to be kept, got %q", safeName("Alpha_2"))
	}
}

func TestAnalyze(t *testing.T) {
	analyses := Analyze(sampleData())
	if len(analyses) != 2 || analyses[0].Name != "Alpha" || analyses[1].Name != "Bravo" {
		t.Fatalf("Unexpected analyses: %+v", analyses)
	}

	alpha := analyses[0]
	if alpha.Total != 4 || alpha.Counts[arena.EventMove] != 2 {
		t.Errorf("Unexpected counts: %+v", alpha)
	}
	if alpha.Percent(arena.EventMove) != 50 || alpha.Percent(arena.EventShoot) != 25 {
		t.Errorf("Unexpected percentages: move=%f shoot=%f", alpha.Percent(arena.EventMove), alpha.Percent(arena.EventShoot))
	}
	if alpha.Span != 4*time.Second || math.Abs(alpha.EventsPerSecond-1) > 1e-9 {
		t.Errorf("Expected 4s span at 1 event/s, got %v at %f", alpha.Span, alpha.EventsPerSecond)
	}

	bravo := analyses[1]
	if bravo.Total != 0 || bravo.Percent(arena.EventMove) != 0 || bravo.EventsPerSecond != 0 {
		t.Errorf("Unexpected empty analysis: %+v", bravo)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, Analyze(sampleData()))

	out := buf.String()
	for _, want := range []string{"DEBUG DATA ANALYSIS", "Alpha", "move", "50.0%", "No events recorded", "Events per second: 1.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q:\n%s", want, out)
		}
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/debug-data" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(sampleData())
	}))
	defer server.Close()

	data, err := Fetch(context.Background(), server.Client(), server.URL+"/")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(data["Alpha"]) != 4 || data["Alpha"][2].Event != arena.EventShoot {
		t.Errorf("Unexpected data: %+v", data)
	}
	if !data["Alpha"][3].Time.Equal(base.Add(4 * time.Second)) {
		t.Errorf("Expected timestamps to survive the round trip, got %v", data["Alpha"][3].Time)
	}
}

func TestFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := Fetch(context.Background(), nil, server.URL); err == nil {
		t.Error("Expected error for a failing server")
	}

	server.Close()
	if _, err := Fetch(context.Background(), nil, server.URL); err == nil {
		t.Error("Expected error for an unreachable server")
	}
}
