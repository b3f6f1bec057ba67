package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata of irislint.
// These variables can be overridden at build time via -ldflags:
//
//	go build -ldflags "-X irislint/internal/version.GitCommit=$(git rev-parse HEAD)"
var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Tagline is printed next to the version.
const Tagline = "every ( deserves its )"

// Info is a snapshot of the build metadata with blanks trimmed.
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
}

// Collect returns the current build metadata. An empty Version reads "dev".
func Collect() Info {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	return Info{
		Version:   v,
		GitCommit: strings.TrimSpace(GitCommit),
		BuildDate: strings.TrimSpace(BuildDate),
	}
}

// Colored renders "major.minor.patch[-suffix]" with one color per component.
// Versions that do not have three numeric parts are returned unchanged.
func Colored(v string) string {
	core, suffix, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v
	}
	out := versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}
