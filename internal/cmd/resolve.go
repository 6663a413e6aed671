package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logolens/logolens/internal/core/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url-or-name>",
	Short: "Show how a raw URL or company name resolves to a domain",
	Long: `Resolve a raw website value the way the pipeline does: clean the
URL down to a registrable domain, or fall back to the well-known
institution lookup when the value is a company name.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	value := args[0]

	domain, ok := resolver.Resolve(value)
	via := "url"
	if !ok {
		domain, ok = resolver.KnownDomain(value)
		via = "name"
	}
	if !ok {
		fmt.Printf("%s: no valid domain\n", value)
		return nil
	}

	if resolver.Excluded(domain) {
		fmt.Printf("%s -> %s (via %s, excluded from network sources)\n", value, domain, via)
		return nil
	}

	fmt.Printf("%s -> %s (via %s)\n", value, domain, via)
	return nil
}
