// Package version exposes the build version injected at link time.
package version

// version is set by the build via -ldflags.
var version = "v0.0.0"

// Value returns the CLI's build version.
func Value() string {
	return version
}
