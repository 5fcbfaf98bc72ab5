package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the model's ruling on whether two table fragments belong
// to one table.
type Verdict struct {
	Merge      bool    `json:"merge"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// ParseVerdict decodes a merge verdict from raw model output, tolerating
// a wrapping markdown code fence. Confidence is clamped to [0, 1].
func ParseVerdict(raw string) (Verdict, error) {
	text := stripCodeBlock(raw)
	var v Verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Verdict{}, fmt.Errorf("parse verdict json: %w (raw: %s)", err, truncate(text, 200))
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	return v, nil
}
