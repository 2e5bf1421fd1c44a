package runner

import "testing"

func TestTailBuffer(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		writes []string
		want   string
	}{
		{"empty", 8, nil, ""},
		{"fits", 8, []string{"abc", "de"}, "abcde"},
		{"trims whitespace", 8, []string{"  ok\n"}, "ok"},
		{"drops head", 4, []string{"abcdef"}, "...cdef"},
		{"drops across writes", 4, []string{"ab", "cd", "ef"}, "...cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTailBuffer(tt.limit)
			for _, w := range tt.writes {
				n, err := tb.Write([]byte(w))
				if err != nil || n != len(w) {
					t.Fatalf("Write(%q) = %d, %v", w, n, err)
				}
			}
			if got := tb.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
