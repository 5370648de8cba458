package authform

import (
	"net/url"
	"strings"
)

// DefaultNextPath is where a successful attempt lands when the caller did not
// ask for anything else.
const DefaultNextPath = "/dashboard"

// NextFromQuery derives the post-authentication target from the "next" query
// parameter. Empty values and anything that is not a local absolute path
// (schemes, hosts, protocol-relative "//" and backslash tricks) fall back to
// DefaultNextPath.
func NextFromQuery(raw string) string {
	if raw == "" {
		return DefaultNextPath
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return DefaultNextPath
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return DefaultNextPath
	}
	return raw
}

// RedirectTarget maps the root path to the dashboard; every other next path
// is used as-is.
func RedirectTarget(next string) string {
	if next == "" || next == "/" {
		return DefaultNextPath
	}
	return next
}
