package util

import (
	"fmt"
	"strings"
)

// ExtractJSONObject recovers a structured payload from model output that may
// wrap it in explanatory prose or markdown fences. It takes the outermost
// brace-delimited region, from the first '{' to the last '}'.
func ExtractJSONObject(text string) (string, error) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")

	if first == -1 || last == -1 || last < first {
		return "", fmt.Errorf("%w: no JSON object found in response", ErrGeneration)
	}

	return text[first : last+1], nil
}
