package cli

import (
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteAuthMethods(t *testing.T) {
	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"standard", "aws", "azure", "google"}},
		{"a", []string{"aws", "azure"}},
		{"g", []string{"google"}},
		{"x", nil},
	}

	for _, tt := range tests {
		got, directive := completeAuthMethods(waitPostgresCmd, nil, tt.prefix)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("completeAuthMethods(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
		if directive != cobra.ShellCompDirectiveNoFileComp {
			t.Errorf("directive = %v, want NoFileComp", directive)
		}
	}
}
