package version

// Version is set via ldflags at build time:
// go build -ldflags "-X github.com/teamcutter/imgrip/internal/version.Version=v0.1.0" ./cmd/imgrip
var Version = "dev"
