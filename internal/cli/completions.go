package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/db"
)

// authMethods contains valid --auth-method values for shell completion.
var authMethods = []string{
	string(db.AuthMethodStandard),
	string(db.AuthMethodAWSIAM),
	string(db.AuthMethodAzureEntraID),
	string(db.AuthMethodGoogleIAM),
}

// completeAuthMethods provides shell completion for the --auth-method flag.
func completeAuthMethods(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var matches []string
	for _, m := range authMethods {
		if strings.HasPrefix(m, toComplete) {
			matches = append(matches, m)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	_ = waitPostgresCmd.RegisterFlagCompletionFunc("auth-method", completeAuthMethods)
}
