package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

// AnalysisStep is one step of an AI-described process. The JSON tags are the
// analysis vendor's field names.
type AnalysisStep struct {
	Number      int    `json:"passo"`
	Timestamp   string `json:"timestamp"`
	Duration    string `json:"duracao"`
	Description string `json:"descricao"`
}

// AnalysisExtract is what the orchestrator consumes from an AI video-analysis
// payload: the known optional fields pulled out, plus the full raw payload
// with unknown vendor keys preserved untouched.
type AnalysisExtract struct {
	Raw             datatypes.JSON
	Steps           []AnalysisStep
	StepsMarkdown   string
	MindmapMarkdown string
}

// ExtractAnalysis isolates the vendor-specific payload shape from the
// orchestrator. The payload may wrap everything under an "analysis" key; each
// known field is optional and absence is not an error.
func ExtractAnalysis(payload map[string]interface{}) AnalysisExtract {
	var out AnalysisExtract
	if payload == nil {
		return out
	}
	if inner, ok := payload["analysis"].(map[string]interface{}); ok {
		payload = inner
	}

	if raw, err := json.Marshal(payload); err == nil {
		out.Raw = datatypes.JSON(raw)
	}
	if s, ok := payload["processo_passos_markdown"].(string); ok {
		out.StepsMarkdown = strings.TrimSpace(s)
	}
	if s, ok := payload["markdown_markmap"].(string); ok {
		out.MindmapMarkdown = strings.TrimSpace(s)
	}
	if steps, ok := payload["processo_passos"].([]interface{}); ok {
		out.Steps = extractSteps(steps)
	}
	return out
}

// extractSteps converts loosely-typed vendor steps one at a time so a single
// malformed entry does not drop the rest.
func extractSteps(raw []interface{}) []AnalysisStep {
	steps := make([]AnalysisStep, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		steps = append(steps, AnalysisStep{
			Number:      toInt(m["passo"]),
			Timestamp:   toStr(m["timestamp"]),
			Duration:    toStr(m["duracao"]),
			Description: toStr(m["descricao"]),
		})
	}
	if len(steps) == 0 {
		return nil
	}
	return steps
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		var i int
		if _, err := fmt.Sscanf(n, "%d", &i); err == nil {
			return i
		}
	}
	return 0
}

func toStr(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", s), ".0")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
