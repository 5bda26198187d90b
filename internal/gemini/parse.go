package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Annotation is one prefix/suffix description pair for an image.
type Annotation struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

// StripFences removes a surrounding markdown code fence from model output.
// Models frequently wrap the requested JSON array in ```json ... ``` even
// when asked not to.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ParseAnnotations decodes the model's response text into annotation pairs.
func ParseAnnotations(text string) ([]Annotation, error) {
	cleaned := StripFences(text)

	var annotations []Annotation
	if err := json.Unmarshal([]byte(cleaned), &annotations); err != nil {
		return nil, fmt.Errorf("response is not a JSON annotation array: %w", err)
	}
	return annotations, nil
}
