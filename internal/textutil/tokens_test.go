package textutil

import "testing"

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{
			name: "empty",
			text: "",
			want: 0,
		},
		{
			name: "cjk characters weigh one each",
			text: "日本語です",
			want: 5,
		},
		{
			name: "latin run is one token",
			text: "hello",
			want: 1,
		},
		{
			name: "multiple latin runs",
			text: "hello world again",
			want: 3,
		},
		{
			name: "symbols weigh half rounded up",
			text: "1234", // 4 * 0.5 = 2
			want: 2,
		},
		{
			name: "odd symbol count rounds up",
			text: "123", // ceil(1.5) = 2
			want: 2,
		},
		{
			name: "mixed japanese and english",
			// 6 CJK + 1 latin run + ceil(1*0.5) for the exclamation mark
			text: "これはRAGの説明!",
			want: 8,
		},
		{
			name: "whitespace ignored",
			text: "   \n\t",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}
