package util

import (
	"errors"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "bare object",
			text: `{"title":"x"}`,
			want: `{"title":"x"}`,
		},
		{
			name: "surrounded by prose",
			text: "Here is the project you asked for:\n{\"title\":\"x\"}\nLet me know if you need more.",
			want: `{"title":"x"}`,
		},
		{
			name: "markdown fenced",
			text: "```json\n{\"a\":{\"b\":1}}\n```",
			want: `{"a":{"b":1}}`,
		},
		{
			name: "nested braces take the outermost region",
			text: `prefix {"a":{"b":"}"}} suffix`,
			want: `{"a":{"b":"}"}}`,
		},
		{
			name:    "no braces",
			text:    "Sorry, I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "empty input",
			text:    "",
			wantErr: true,
		},
		{
			name:    "closing brace before opening",
			text:    "} nope {",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractJSONObject(%q) expected error, got %q", tt.text, got)
				}
				if !errors.Is(err, ErrGeneration) {
					t.Errorf("error = %v; want ErrGeneration", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSONObject(%q) error = %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ExtractJSONObject(%q) = %q; want %q", tt.text, got, tt.want)
			}
		})
	}
}
