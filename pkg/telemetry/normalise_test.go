package telemetry

import (
	"testing"
	"time"
)

func TestNormalisePlate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AB 12 345", "ab12345"},
		{"  cd67890  ", "cd67890"},
		{"EF\t11 111", "ef11111"},
		{"", ""},
		{"   ", ""},
	}

	for _, test := range tests {
		if result := NormalisePlate(test.input); result != test.expected {
			t.Errorf("NormalisePlate(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestExtractZipCode(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"2700", 2700, true},
		{"2700.0", 2700, true},
		{"DK-2200 N", 2200, true},
		{"12345", ZipCodeUnknown, false},
		{"123", ZipCodeUnknown, false},
		{"", ZipCodeUnknown, false},
		{"nan", ZipCodeUnknown, false},
		{"12 1050", 1050, true},
	}

	for _, test := range tests {
		zip, ok := ExtractZipCode(test.input)
		if zip != test.expected || ok != test.ok {
			t.Errorf("ExtractZipCode(%q) = (%d, %v), expected (%d, %v)", test.input, zip, ok, test.expected, test.ok)
		}
	}
}

func TestTimestampFromFilename(t *testing.T) {
	timestamp := TimestampFromFilename("cars_20250801_120530.json")
	if timestamp == nil {
		t.Fatal("expected a timestamp from cars_20250801_120530.json")
	}

	expected := time.Date(2025, 8, 1, 12, 5, 30, 0, time.UTC)
	if !timestamp.Equal(expected) {
		t.Errorf("got %v, expected %v", timestamp, expected)
	}

	if TimestampFromFilename("cars.json") != nil {
		t.Error("expected no timestamp from cars.json")
	}
}

func TestNormaliseTimestampFallback(t *testing.T) {
	// Row timestamp wins over the filename
	ping, problems := Normalise(RawPing{
		LicencePlate: "AB12345",
		FileDatetime: "2025-08-01T10:00:00",
		SourceFile:   "cars_20250801_120000.json",
	})
	if len(problems) != 1 || problems[0] != ProblemUnparsableZip {
		t.Errorf("unexpected problems %v", problems)
	}
	if ping.Timestamp == nil || ping.Timestamp.Hour() != 10 {
		t.Errorf("row timestamp not used: %v", ping.Timestamp)
	}

	// Filename fills in when the row has no timestamp
	ping, _ = Normalise(RawPing{
		LicencePlate: "AB12345",
		SourceFile:   "cars_20250801_120000.json",
	})
	if ping.Timestamp == nil || ping.Timestamp.Hour() != 12 {
		t.Errorf("filename timestamp not used: %v", ping.Timestamp)
	}

	// Neither parses: the ping is kept, flagged
	ping, problems = Normalise(RawPing{
		LicencePlate: "AB12345",
		FileDatetime: "not a datetime",
		SourceFile:   "cars.json",
	})
	if ping.Timestamp != nil {
		t.Errorf("expected nil timestamp, got %v", ping.Timestamp)
	}

	found := false
	for _, problem := range problems {
		if problem == ProblemMissingTimestamp {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s in %v", ProblemMissingTimestamp, problems)
	}
}

func TestSortPings(t *testing.T) {
	at := func(minute int) *time.Time {
		timestamp := time.Date(2025, 8, 1, 12, minute, 0, 0, time.UTC)
		return &timestamp
	}

	pings := []Ping{
		{LicencePlate: "bb", Timestamp: at(5)},
		{LicencePlate: "aa", Timestamp: at(10)},
		{LicencePlate: "aa", Timestamp: nil},
		{LicencePlate: "aa", Timestamp: at(0)},
	}

	SortPings(pings)

	if pings[0].LicencePlate != "aa" || pings[0].Timestamp != nil {
		t.Errorf("expected nil timestamp first for aa, got %+v", pings[0])
	}
	if pings[1].Timestamp == nil || pings[1].Timestamp.Minute() != 0 {
		t.Errorf("expected aa@0 second, got %+v", pings[1])
	}
	if pings[2].Timestamp == nil || pings[2].Timestamp.Minute() != 10 {
		t.Errorf("expected aa@10 third, got %+v", pings[2])
	}
	if pings[3].LicencePlate != "bb" {
		t.Errorf("expected bb last, got %+v", pings[3])
	}
}
