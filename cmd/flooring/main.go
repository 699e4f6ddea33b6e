package main

import (
	"fmt"
	"os"
	"strings"

	"flooring-cli/internal/cli"
	"flooring-cli/internal/store"
)

// isRecordID matches the millisecond-timestamp ids reports and plans use.
func isRecordID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func rewriteDirectReportLookupArgs(argv []string) []string {
	// Convenience: `flooring <id>` works like `flooring reports show <id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
	// before parsing. Persistent flags may come first, so look for the first
	// positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--endpoint":     true,
		"--format":       true,
		"--log-level":    true,
		"--resync-delay": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "reports", "show")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isRecordID(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if isRecordID(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	if err := store.LoadDotEnv("."); err != nil {
		fmt.Fprintln(os.Stderr, "warning: .env:", err)
	}
	os.Args = rewriteDirectReportLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
