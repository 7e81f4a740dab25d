// Package version exposes build information, set with
// -ldflags "-X github.com/farcloser/mixcritic/version.version=v1.2.3 -X ...version.commit=abcdef".
package version

import "runtime/debug"

//nolint:gochecknoglobals // set at link time
var (
	name    = "mixcritic"
	version = ""
	commit  = ""
)

// Name returns the binary name.
func Name() string {
	return name
}

// Version returns the release version, or the module version recorded by the go tool.
func Version() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "dev"
}

// Commit returns the VCS revision the binary was built from, "unknown" when not recorded.
func Commit() string {
	if commit != "" {
		return commit
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}
