// ABOUTME: Build identity constants
// ABOUTME: Reported in logs and the client user agent
package version

const (
	Version = "0.1.0"
	Product = "Voicelink Client"
)
