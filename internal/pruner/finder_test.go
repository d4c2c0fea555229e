package pruner

import "testing"

func TestParseHeadings(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{
			name:      "valid proposal",
			response:  `{"start_heading": "1 Introduction", "end_heading": "References"}`,
			wantStart: "1 Introduction",
			wantEnd:   "References",
		},
		{
			name:      "fenced proposal",
			response:  "```json\n{\"start_heading\": \"Abstract\", \"end_heading\": \"Bibliography\"}\n```",
			wantStart: "Abstract",
			wantEnd:   "Bibliography",
		},
		{
			name:      "empty headings mean nothing to prune",
			response:  `{"start_heading": "", "end_heading": ""}`,
			wantStart: "",
			wantEnd:   "",
		},
		{
			name:      "headings are trimmed",
			response:  `{"start_heading": "  1 Introduction ", "end_heading": " References\n"}`,
			wantStart: "1 Introduction",
			wantEnd:   "References",
		},
		{
			name:     "prose response",
			response: "The content starts at the introduction.",
			wantErr:  true,
		},
		{
			name:     "empty response",
			response: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := parseHeadings(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Start != tt.wantStart {
				t.Errorf("start = %q, want %q", h.Start, tt.wantStart)
			}
			if h.End != tt.wantEnd {
				t.Errorf("end = %q, want %q", h.End, tt.wantEnd)
			}
		})
	}
}
