package oracle

import (
	"fmt"
	"strconv"
	"strings"
)

// parseVerdict extracts the structured verdict from the provider's text
// response. Expected shape:
//
//	SELECTED: <candidate number, or "none">
//	CONFIDENCE: <0.0-1.0>
//	REASONING: <free text>
func parseVerdict(content string) (VerdictResponse, error) {
	var resp VerdictResponse
	var sawSelected bool

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "SELECTED:"):
			value := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "SELECTED:")))
			sawSelected = true
			if value == "none" || value == "null" || value == "" {
				resp.SelectedIndex = nil
				continue
			}
			idx, err := strconv.Atoi(value)
			if err != nil {
				return VerdictResponse{}, fmt.Errorf("unparseable selection %q: %w", value, err)
			}
			resp.SelectedIndex = &idx

		case strings.HasPrefix(line, "CONFIDENCE:"):
			value := strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:"))
			// Tolerate percentage answers like "85%".
			if strings.HasSuffix(value, "%") {
				percent, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(value, "%")), 64)
				if err != nil {
					return VerdictResponse{}, fmt.Errorf("unparseable confidence %q: %w", value, err)
				}
				resp.Confidence = percent / 100.0
				continue
			}
			confidence, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return VerdictResponse{}, fmt.Errorf("unparseable confidence %q: %w", value, err)
			}
			resp.Confidence = confidence

		case strings.HasPrefix(line, "REASONING:"):
			resp.Rationale = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		}
	}

	if !sawSelected {
		return VerdictResponse{}, fmt.Errorf("response missing SELECTED line")
	}

	return resp, nil
}
