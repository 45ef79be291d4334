package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/joestump/village-forge/internal/village"
)

// fileTimeLayout is the timestamp format used in result file names.
const fileTimeLayout = "20060102_150405"

// Results is the document written to the response-agent result files.
type Results struct {
	Timestamp             time.Time          `json:"timestamp"`
	TotalAttempts         int                `json:"total_attempts"`
	SuccessfulGenerations int                `json:"successful_generations"`
	FailedGenerations     int                `json:"failed_generations"`
	Generations           []GenerationResult `json:"generations"`

	mu     sync.Mutex
	fileMu sync.Mutex // serializes writeFile so snapshots land in order
}

// GenerationResult is one scenario's outcome. Failed generations carry an
// Error and may lack everything after GenerationNumber.
type GenerationResult struct {
	ID               string            `json:"id,omitempty"`
	SystemData       *village.Scenario `json:"system_data,omitempty"`
	UserPrompt       string            `json:"user_prompt,omitempty"`
	FormattedPrompt  string            `json:"formatted_prompt,omitempty"`
	Response         string            `json:"response,omitempty"`
	GenerationNumber int               `json:"generation_number"`
	GenerationTime   string            `json:"generation_time,omitempty"`
	Success          bool              `json:"success"`
	Error            string            `json:"error,omitempty"`
}

func newResults(start time.Time, attempts int) *Results {
	return &Results{
		Timestamp:     start,
		TotalAttempts: attempts,
		Generations:   []GenerationResult{},
	}
}

// add appends r, keeping generations ordered by number.
func (res *Results) add(r GenerationResult) {
	res.mu.Lock()
	defer res.mu.Unlock()

	if r.Success {
		res.SuccessfulGenerations++
	} else {
		res.FailedGenerations++
	}
	i, _ := slices.BinarySearchFunc(res.Generations, r.GenerationNumber, func(g GenerationResult, n int) int {
		return g.GenerationNumber - n
	})
	res.Generations = slices.Insert(res.Generations, i, r)
}

// writeFile saves the results as dir/response-agent_<ts>_<status>.json and
// returns the path. The document is written to a temporary file and renamed
// into place, so readers never see a partial file.
func (res *Results) writeFile(dir string, stamp time.Time, final bool) (string, error) {
	res.fileMu.Lock()
	defer res.fileMu.Unlock()

	res.mu.Lock()
	data, err := json.MarshalIndent(res, "", "  ")
	res.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}

	status := "intermediate"
	if final {
		status = "final"
	}
	path := filepath.Join(dir, fmt.Sprintf("response-agent_%s_%s.json", stamp.Format(fileTimeLayout), status))

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename into %s: %w", path, err)
	}
	return path, nil
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
