package tabular

import (
	"strings"
	"testing"
)

func TestMinimalQuoting(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{"plain", "plain"},
		{"", ""},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"no quoting needed 123", "no quoting needed 123"},
	}

	writer := NewWriter(&strings.Builder{}, ",")
	for _, test := range tests {
		if result := writer.quoteField(test.value); result != test.expected {
			t.Errorf("quoteField(%q) = %q, expected %q", test.value, result, test.expected)
		}
	}
}

func TestWriterHeaderAndRows(t *testing.T) {
	var output strings.Builder

	writer := NewWriter(&output, ",")
	if err := writer.WriteHeader([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}

	// Absent fields serialise as empty strings, extra fields are dropped
	if err := writer.WriteRow(map[string]string{"a": "1", "c": "3", "z": "zz"}); err != nil {
		t.Fatalf("WriteRow failed: %v", err)
	}
	if err := writer.WriteRow(map[string]string{"b": "x,y"}); err != nil {
		t.Fatalf("WriteRow failed: %v", err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	expected := "a,b,c\n1,,3\n,\"x,y\",\n"
	if output.String() != expected {
		t.Errorf("output = %q, expected %q", output.String(), expected)
	}
}

func TestWriterHeaderExactlyOnce(t *testing.T) {
	writer := NewWriter(&strings.Builder{}, ",")

	if err := writer.WriteRow(map[string]string{"a": "1"}); err == nil {
		t.Error("expected an error writing a row before the header")
	}

	if err := writer.WriteHeader([]string{"a"}); err != nil {
		t.Fatalf("WriteHeader failed: %v", err)
	}
	if err := writer.WriteHeader([]string{"a"}); err == nil {
		t.Error("expected an error writing the header twice")
	}
}

func TestFieldSet(t *testing.T) {
	fields := FieldSet{}
	fields.Add("lat", "lon")
	fields.Add("lat")

	other := FieldSet{}
	other.Add("licencePlate", "zipCode")
	fields.Merge(other)

	sorted := fields.Sorted()
	expected := []string{"lat", "licencePlate", "lon", "zipCode"}

	if len(sorted) != len(expected) {
		t.Fatalf("Sorted() = %v, expected %v", sorted, expected)
	}
	for i := range expected {
		if sorted[i] != expected[i] {
			t.Errorf("Sorted()[%d] = %q, expected %q", i, sorted[i], expected[i])
		}
	}
}
