package webui

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Quality is the requested render quality of a generate request.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// Generate request limits.
const (
	MaxPromptLength = 500
	MinDuration     = 1
	MaxDuration     = 60

	DefaultDuration = 10
	DefaultQuality  = QualityMedium
)

// GenerateRequest is the payload the page sends with a generate message.
// Steps is a renderer hint the page may send; it is not validated.
type GenerateRequest struct {
	Prompt   string  `json:"prompt"`
	Duration float64 `json:"duration"`
	Quality  Quality `json:"quality"`
	Steps    int     `json:"steps,omitempty"`
}

// ErrInvalidGenerate wraps every validation failure of a generate payload.
var ErrInvalidGenerate = errors.New("webui: invalid generate request")

type rawGenerateRequest struct {
	Prompt   *string  `json:"prompt"`
	Duration *float64 `json:"duration"`
	Quality  *string  `json:"quality"`
	Steps    int      `json:"steps"`
}

// ParseGenerateRequest decodes and validates a generate payload. The prompt
// is required and trimmed; duration defaults to 10 seconds and quality to
// medium. All problems are reported together.
func ParseGenerateRequest(payload json.RawMessage) (GenerateRequest, error) {
	var raw rawGenerateRequest
	if len(payload) == 0 {
		return GenerateRequest{}, fmt.Errorf("%w: missing payload", ErrInvalidGenerate)
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return GenerateRequest{}, fmt.Errorf("%w: %v", ErrInvalidGenerate, err)
	}

	req := GenerateRequest{
		Duration: DefaultDuration,
		Quality:  DefaultQuality,
		Steps:    raw.Steps,
	}
	var problems []string

	switch {
	case raw.Prompt == nil:
		problems = append(problems, "prompt is required")
	case strings.TrimSpace(*raw.Prompt) == "":
		problems = append(problems, "prompt is empty")
	case utf8.RuneCountInString(*raw.Prompt) > MaxPromptLength:
		problems = append(problems, fmt.Sprintf("prompt is longer than %d characters", MaxPromptLength))
	default:
		req.Prompt = strings.TrimSpace(*raw.Prompt)
	}

	if raw.Duration != nil {
		if *raw.Duration < MinDuration || *raw.Duration > MaxDuration {
			problems = append(problems, fmt.Sprintf("duration must be between %d and %d seconds", MinDuration, MaxDuration))
		} else {
			req.Duration = *raw.Duration
		}
	}

	if raw.Quality != nil {
		switch q := Quality(*raw.Quality); q {
		case QualityLow, QualityMedium, QualityHigh:
			req.Quality = q
		default:
			problems = append(problems, fmt.Sprintf("quality %q is not low, medium or high", *raw.Quality))
		}
	}

	if len(problems) > 0 {
		return GenerateRequest{}, fmt.Errorf("%w: %s", ErrInvalidGenerate, strings.Join(problems, "; "))
	}
	return req, nil
}
