package version

// Version is the tklbam release version. Overridden at build time via
// -ldflags "-X github.com/jeff-dagenais/tklbam/src/version.Version=...".
var Version = "dev"
