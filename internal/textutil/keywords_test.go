package textutil

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "punctuation removed",
			text: "「ベクトル検索」とは？",
			want: []string{"ベクトル検索", "とは"},
		},
		{
			name: "script boundary splits tokens",
			text: "Goのgoroutine入門",
			want: []string{"Go", "の", "goroutine", "入門"},
		},
		{
			name: "duplicates removed preserving order",
			text: "search index search vector index",
			want: []string{"search", "index", "vector"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
