package runner

// Build information, injected with
// -ldflags "-X github.com/sadewadee/hashcat-dashboard/runner.Version=..."
var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "none"
)
