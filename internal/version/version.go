// Package version provides build and version information for InnerVoice.
package version

// Version is the current release version of InnerVoice.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/AaronLay10/InnerVoice/internal/version.Version=x.y.z"
var Version = "1.0.0"
