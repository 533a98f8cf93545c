package textutil

import "testing"

func TestFoldKey(t *testing.T) {
	tests := []struct {
		a, b string
		same bool
	}{
		{"Rock", "rock", true},
		{"  Hip   Hop ", "hip hop", true},
		{"Straße", "STRASSE", true},
		{"Jazz", "Jazzy", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			if got := FoldKey(tt.a) == FoldKey(tt.b); got != tt.same {
				t.Fatalf("FoldKey(%q)==FoldKey(%q) = %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}

func TestFirstDuplicate(t *testing.T) {
	if dup, ok := FirstDuplicate([]string{"Happy", "Sad", " happy"}); !ok || dup != " happy" {
		t.Fatalf("expected duplicate %q, got %q %v", " happy", dup, ok)
	}
	if _, ok := FirstDuplicate([]string{"Rock", "Jazz", "Pop"}); ok {
		t.Fatal("expected no duplicate")
	}
}

func TestContainsFold(t *testing.T) {
	if !ContainsFold("Song_One.MP3", "one.mp3") {
		t.Fatal("expected case-insensitive match")
	}
	if ContainsFold("song.wav", "mp3") {
		t.Fatal("unexpected match")
	}
	if !ContainsFold("anything", "") {
		t.Fatal("empty needle should match")
	}
}

func TestKeySegment(t *testing.T) {
	tests := map[string]string{
		"":                "unknown",
		"Exports 2024":    "exports_2024",
		"__":              "unknown",
		"ok-Name_1":       "ok-name_1",
		"tagging records": "tagging_records",
		"a / b":           "a_b",
		"Café":            "caf",
	}
	for in, want := range tests {
		if got := KeySegment(in); got != want {
			t.Fatalf("KeySegment(%q) = %q, want %q", in, got, want)
		}
	}
}
