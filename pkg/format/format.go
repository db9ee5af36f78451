// Package format renders engine and registry data for display and
// composes registry image references.
package format

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	units "github.com/docker/go-units"
)

var (
	ansiPattern    = regexp.MustCompile(`\x1b(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)
	newlinePattern = regexp.MustCompile(`[\r\n]+`)
)

// BuildLog cleans a raw engine stream for display: ANSI escapes
// removed, runs of newlines collapsed, surrounding whitespace trimmed.
func BuildLog(raw string) string {
	s := ansiPattern.ReplaceAllString(raw, "")
	s = newlinePattern.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// RepoName derives a display name from a git URL: the last path
// segment with any .git suffix removed.
func RepoName(url string) string {
	name := strings.TrimRight(strings.TrimSpace(url), "/")
	name = strings.TrimSuffix(name, ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// RegistryHost strips the scheme and trailing slashes from a registry
// URL, leaving the host[:port][/path] part used in image references.
// Already-clean values pass through unchanged.
func RegistryHost(registryURL string) string {
	host := strings.TrimSpace(registryURL)
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	return strings.TrimRight(host, "/")
}

// RegistryRef composes the fully qualified <registry>/<repository>:<tag>
// reference used when tagging and pushing to a private registry.
func RegistryRef(registryURL, repository, tag string) string {
	return fmt.Sprintf("%s/%s:%s", RegistryHost(registryURL), repository, tag)
}

// ImageSize renders a byte count the way the engine CLI does.
func ImageSize(bytes int64) string {
	return units.HumanSize(float64(bytes))
}

// ImageAge renders the time elapsed since created, e.g. "3 days ago".
func ImageAge(created time.Time) string {
	return units.HumanDuration(time.Since(created)) + " ago"
}
