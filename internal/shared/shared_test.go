package shared

import "testing"

func TestNormalizeSongKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{
			name:   "basic normalization",
			title:  "Song Title",
			artist: "Artist Name",
			want:   "song title|artist name",
		},
		{
			name:   "extra whitespace",
			title:  "  Song   Title  ",
			artist: "  Artist   Name  ",
			want:   "song title|artist name",
		},
		{
			name:   "mixed case",
			title:  "SoNg TiTlE",
			artist: "ArTiSt NaMe",
			want:   "song title|artist name",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSongKey(tt.title, tt.artist)
			if got != tt.want {
				t.Errorf("NormalizeSongKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{213, "3:33"},
		{-5, "0:00"},
	}

	for _, tt := range tc {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestParseWeek(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "already a saturday",
			input: "2024-03-09",
			want:  "2024-03-09",
		},
		{
			name:  "wednesday rolls forward",
			input: "2024-03-06",
			want:  "2024-03-09",
		},
		{
			name:  "sunday rolls to next saturday",
			input: "2024-03-10",
			want:  "2024-03-16",
		},
		{
			name:  "surrounding whitespace",
			input: " 2024-03-09 ",
			want:  "2024-03-09",
		},
		{
			name:    "garbage input",
			input:   "last tuesday",
			wantErr: true,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWeek(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseWeek(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWeek(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseWeek(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPreviousWeek(t *testing.T) {
	got, err := PreviousWeek("2024-03-09")
	if err != nil {
		t.Fatalf("PreviousWeek unexpected error: %v", err)
	}
	if got != "2024-03-02" {
		t.Errorf("PreviousWeek() = %v, want 2024-03-02", got)
	}

	if _, err := PreviousWeek("not-a-week"); err == nil {
		t.Error("PreviousWeek should reject malformed weeks")
	}
}

func TestFormatMovement(t *testing.T) {
	tc := []struct {
		name     string
		position int
		lastWeek int
		want     string
	}{
		{"debut", 5, 0, "NEW"},
		{"hold", 3, 3, "="},
		{"climb", 2, 7, "+5"},
		{"fall", 10, 4, "-6"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMovement(tt.position, tt.lastWeek); got != tt.want {
				t.Errorf("FormatMovement(%d, %d) = %v, want %v", tt.position, tt.lastWeek, got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("GenerateID returned empty string")
	}
	if a == b {
		t.Error("GenerateID returned duplicate IDs")
	}
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState unexpected error: %v", err)
	}
	if len(state) != 32 {
		t.Errorf("expected 32 hex characters, got %d", len(state))
	}
}
