package chunker

import "testing"

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		want     string
	}{
		{
			name:     "first h1",
			content:  "intro\n\n# My Title\n\n## Sub",
			filename: "x.md",
			want:     "My Title",
		},
		{
			name:     "h2 fallback when no h1",
			content:  "## Only Sub\ncontent",
			filename: "x.md",
			want:     "Only Sub",
		},
		{
			name:     "filename fallback",
			content:  "no headings here",
			filename: "meeting notes.md",
			want:     "Meeting Notes",
		},
		{
			name:     "empty content",
			content:  "",
			filename: "empty file.txt",
			want:     "Empty File",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTitle([]byte(tt.content), tt.filename)
			if got != tt.want {
				t.Errorf("ExtractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
