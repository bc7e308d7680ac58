package prettyprint

import "testing"

func TestList(t *testing.T) {
	tests := []struct {
		name     string
		elements []string
		want     string
	}{
		{"empty", nil, ""},
		{"single", []string{"a"}, "'a'"},
		{"pair", []string{"a", "b"}, "'a' and 'b'"},
		{"triple", []string{"a", "b", "c"}, "'a', 'b', and 'c'"},
		{"four", []string{"a", "b", "c", "d"}, "'a', 'b', 'c', and 'd'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := List(tt.elements); got != tt.want {
				t.Errorf("List(%v) = %q, want %q", tt.elements, got, tt.want)
			}
		})
	}
}
