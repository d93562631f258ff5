package common

import "fmt"

// Version metadata, set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// PrintVersion prints version information for a command.
func PrintVersion(command string) {
	fmt.Printf("%s %s (commit %s, built %s)\n", command, Version, GitCommit, BuildDate)
}
