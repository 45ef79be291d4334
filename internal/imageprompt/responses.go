package imageprompt

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// resultFile covers both result layouts: a single {"response": ...} document
// and a batch document with a "generations" list.
type resultFile struct {
	Response    *string `json:"response"`
	Generations []struct {
		Response string `json:"response"`
	} `json:"generations"`
}

// ResponsesFromFile returns the non-empty model responses stored in a
// generation result file.
func ResponsesFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseResponses(data)
}

// ParseResponses decodes a generation result document.
func ParseResponses(data []byte) ([]string, error) {
	var doc resultFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode result file: %w", err)
	}

	var out []string
	if doc.Response != nil {
		if strings.TrimSpace(*doc.Response) != "" {
			out = append(out, *doc.Response)
		}
		return out, nil
	}
	for _, g := range doc.Generations {
		if strings.TrimSpace(g.Response) == "" {
			continue
		}
		out = append(out, g.Response)
	}
	return out, nil
}
