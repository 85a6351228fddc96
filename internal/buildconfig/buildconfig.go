package buildconfig

// Set with -ldflags "-X github.com/Harshitk-cp/skillgraph/internal/buildconfig.version=..."
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// UserAgent identifies skillgraph clients and servers, e.g. "skillgraph/1.2.0".
func UserAgent() string {
	return "skillgraph/" + version
}

// VersionInfo is the build block reported on /metrics. built is omitted for
// local builds.
func VersionInfo() map[string]string {
	info := map[string]string{
		"version": version,
		"commit":  commit,
	}
	if buildDate != "" {
		info["built"] = buildDate
	}
	return info
}
