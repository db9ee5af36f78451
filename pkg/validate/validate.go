// Package validate holds the pure syntax checks applied to user input
// before any provider is invoked. Every check is regular-expression
// based and performs no I/O.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	gitHTTPPattern = regexp.MustCompile(`^https?://[a-zA-Z0-9_.-]+\.[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+(?:\.git)?$`)
	gitSSHPattern  = regexp.MustCompile(`^git@[a-zA-Z0-9_.-]+\.[a-zA-Z0-9_.-]+:[a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+(?:\.git)?$`)

	tagPattern  = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*[a-z0-9]$|^[a-z0-9]$`)
	repoPattern = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*(?:/[a-z0-9]+(?:[._-][a-z0-9]+)*)*$`)

	fromPattern = regexp.MustCompile(`(?m)^\s*FROM\s+\S+`)
	argPattern  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// Error is the type of every failure reported by this package, so
// callers can tell syntax rejections apart from provider failures.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Errorf builds an *Error. Exported for callers that run their own
// syntax checks, like the build-argument line parser.
func Errorf(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// GitURL accepts http(s) forms like https://host.tld/owner/repo(.git)
// and scp-like ssh forms like git@host.tld:owner/repo(.git).
func GitURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Errorf("git repository URL is required")
	}
	if gitHTTPPattern.MatchString(raw) || gitSSHPattern.MatchString(raw) {
		return nil
	}
	return Errorf("invalid git repository URL: %q", raw)
}

// ImageTag enforces the engine tag grammar: lowercase alphanumeric
// bounded, dots, dashes and underscores inside.
func ImageTag(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Errorf("image tag is required")
	}
	if !tagPattern.MatchString(tag) {
		return Errorf("invalid image tag: %q", tag)
	}
	return nil
}

// ImageRepository enforces the repository grammar: lowercase
// slash-separated components, separators only between alphanumerics.
func ImageRepository(repo string) error {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return Errorf("image repository is required")
	}
	if !repoPattern.MatchString(repo) {
		return Errorf("invalid image repository: %q", repo)
	}
	return nil
}

// RegistryURL checks that the value parses to a URL with a host once a
// missing scheme is defaulted to http.
func RegistryURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Errorf("registry URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Errorf("invalid registry URL: %q", raw)
	}
	return nil
}

// Dockerfile requires at least one FROM instruction at the start of a
// line, leading whitespace allowed.
func Dockerfile(content string) error {
	if !fromPattern.MatchString(content) {
		return Errorf("dockerfile has no FROM instruction")
	}
	return nil
}

// BuildArgKey accepts alphanumeric and underscore key names.
func BuildArgKey(key string) error {
	if !argPattern.MatchString(key) {
		return Errorf("invalid build argument key: %q", key)
	}
	return nil
}
