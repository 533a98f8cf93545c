package library

import "testing"

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    float64
		wantErr bool
	}{
		{name: "container duration", output: `{"format":{"duration":"183.52"}}`, want: 183.52},
		{
			name:   "audio stream fallback",
			output: `{"streams":[{"codec_type":"video","duration":"9"},{"codec_type":"audio","duration":"42.5"}],"format":{"duration":"N/A"}}`,
			want:   42.5,
		},
		{name: "missing duration", output: `{"format":{}}`, wantErr: true},
		{name: "negative duration", output: `{"format":{"duration":"-1"}}`, wantErr: true},
		{name: "malformed json", output: `{`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseProbeDuration([]byte(tc.output))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
