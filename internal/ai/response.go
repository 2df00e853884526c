package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/resumatch/internal/resume"
)

const noLLMReason = "No reason provided by LLM."

var (
	fencedJSON    = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	bareKey       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)

	salvageString = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
	salvageFields = map[string]*regexp.Regexp{
		"summary":        regexp.MustCompile(`"summary"\s*:\s*"((?:[^"\\]|\\.)*)"`),
		"skills":         regexp.MustCompile(`(?s)"skills"\s*:\s*\[(.*?)(?:\]|$)`),
		"experience":     regexp.MustCompile(`"experience"\s*:\s*"?(\d+)`),
		"educationLevel": regexp.MustCompile(`"education_?[Ll]evel"\s*:\s*"((?:[^"\\]|\\.)*)"`),
		"category":       regexp.MustCompile(`"category"\s*:\s*"((?:[^"\\]|\\.)*)"`),
	}
)

// fieldAliases maps key spellings seen from providers onto record keys.
var fieldAliases = map[string]string{
	"education_level":     "educationLevel",
	"education":           "educationLevel",
	"years_of_experience": "experience",
	"experienceYears":     "experience",
	"experience_years":    "experience",
	"job_category":        "category",
}

type analysisFields struct {
	Summary        string   `mapstructure:"summary"`
	Skills         []string `mapstructure:"skills"`
	Experience     int      `mapstructure:"experience"`
	EducationLevel string   `mapstructure:"educationLevel"`
	Category       string   `mapstructure:"category"`
}

// ParseAnalysis turns provider output into a sanitized record. The output
// may be wrapped in markdown fences or prose, cut short, or use loose JSON.
func ParseAnalysis(raw string) (*resume.Record, error) {
	return parseAnalysis(raw, false)
}

// SalvageAnalysis is ParseAnalysis with a last resort for output that is not
// JSON at all: known fields are picked out one by one.
func SalvageAnalysis(raw string) (*resume.Record, error) {
	return parseAnalysis(raw, true)
}

func parseAnalysis(raw string, salvage bool) (*resume.Record, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	payload, err := decodeObject(raw)
	if err != nil {
		if !salvage {
			return nil, err
		}
		payload = salvageAnalysis(raw)
		if len(payload) == 0 {
			return nil, fmt.Errorf("%w: no analysis fields found", ErrMalformedResponse)
		}
	}

	payload = canonicalKeys(payload)
	if err := ValidateAnalysisPayload(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var fields analysisFields
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &fields,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToSkillsHook,
			stringToYearsHook,
		),
	})
	if err != nil {
		return nil, fmt.Errorf("create analysis decoder: %w", err)
	}
	if err := decoder.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	rec := resume.Sanitize(resume.Record{
		Summary:        fields.Summary,
		Skills:         fields.Skills,
		Experience:     resume.Years(fields.Experience),
		EducationLevel: resume.EducationLevel(fields.EducationLevel),
		Category:       fields.Category,
	})
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &rec, nil
}

// ParseScore turns provider output into a relevance score clamped to [0,100].
func ParseScore(raw string) (resume.ScoreResult, error) {
	if strings.TrimSpace(raw) == "" {
		return resume.ScoreResult{}, ErrEmptyResponse
	}

	payload, err := decodeObject(raw)
	if err != nil {
		return resume.ScoreResult{}, err
	}

	score := coerceFloat(payload["score"])
	if math.IsNaN(score) {
		return resume.ScoreResult{}, fmt.Errorf("%w: score is missing or not a number", ErrMalformedResponse)
	}

	reason := coerceString(payload["reason"])
	if reason == "" {
		reason = noLLMReason
	}

	return resume.ScoreResult{
		Score:  resume.ClampScore(int(score)),
		Reason: reason,
		Source: SourceLLMScore,
	}, nil
}

func decodeObject(raw string) (map[string]any, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err == nil && data != nil {
		return data, nil
	}

	data = nil
	if err := json.Unmarshal([]byte(repairJSON(cleaned)), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: not a json object", ErrMalformedResponse)
	}
	return data, nil
}

// extractJSON strips markdown fences and surrounding prose, and closes any
// object left open by a truncated response.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	} else if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
	}
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	if start < 0 {
		return raw
	}
	if end := strings.LastIndex(raw, "}"); end > start {
		if candidate := raw[start : end+1]; closeOpen(candidate) == candidate {
			return candidate
		}
	}
	return closeOpen(raw[start:])
}

// closeOpen appends whatever quotes, brackets and braces are needed to close
// the structures still open at the end of s.
func closeOpen(s string) string {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if n := len(stack); n > 0 && stack[n-1] == c {
				stack = stack[:n-1]
			}
		}
	}

	if !inString && len(stack) == 0 {
		return s
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}

// repairJSON fixes the usual loose-JSON mistakes: single-quoted strings,
// unquoted keys and trailing commas.
func repairJSON(s string) string {
	if !strings.Contains(s, `"`) {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	s = bareKey.ReplaceAllString(s, `$1"$2":`)
	return trailingComma.ReplaceAllString(s, "$1")
}

func salvageAnalysis(raw string) map[string]any {
	out := make(map[string]any)
	for key, pattern := range salvageFields {
		m := pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if key != "skills" {
			out[key] = unescape(m[1])
			continue
		}
		var skills []any
		for _, item := range salvageString.FindAllStringSubmatch(m[1], -1) {
			skills = append(skills, unescape(item[1]))
		}
		out[key] = skills
	}
	return out
}

func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}

func canonicalKeys(payload map[string]any) map[string]any {
	for alias, key := range fieldAliases {
		v, ok := payload[alias]
		if !ok {
			continue
		}
		if _, exists := payload[key]; !exists {
			payload[key] = v
		}
		delete(payload, alias)
	}
	return payload
}

func stringToSkillsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string(nil)) {
		return data, nil
	}
	var skills []string
	for _, s := range strings.Split(data.(string), ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills, nil
}

func stringToYearsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Int {
		return data, nil
	}
	return int(resume.ParseYears(data.(string))), nil
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
