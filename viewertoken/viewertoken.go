// Package viewertoken parses and normalizes `<name>@<version>` viewer
// references, the shorthand used by tooling to pick one capability manifest
// out of a collection (e.g. "napari@0.5.1" or just "napari").
package viewertoken

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ViewerToken is a normalized viewer reference. Version is optional; an empty
// Version matches any release of the named viewer.
type ViewerToken struct {
	// Name is normalized to lowercase.
	Name string
	// Version is preserved as-is.
	Version string
}

func (t ViewerToken) String() string {
	if t.Name == "" {
		return ""
	}
	if t.Version == "" {
		return t.Name
	}
	return t.Name + "@" + t.Version
}

var tokenRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]*(@[A-Za-z0-9][A-Za-z0-9.\-]*)?$`)

// Parse parses a viewer reference and normalizes the name to lowercase. The
// version part is optional.
func Parse(s string) (ViewerToken, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ViewerToken{}, errors.New("viewer token: empty")
	}
	if !tokenRe.MatchString(s) {
		return ViewerToken{}, fmt.Errorf("viewer token: invalid %q", s)
	}
	at := strings.LastIndexByte(s, '@')
	if at < 0 {
		return ViewerToken{Name: strings.ToLower(s)}, nil
	}
	return ViewerToken{Name: strings.ToLower(s[:at]), Version: s[at+1:]}, nil
}

// IsViewerToken reports whether s is a syntactically valid viewer reference.
func IsViewerToken(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Matches reports whether the token refers to the viewer identified by name
// and version. Name comparison is case-insensitive; an empty token version
// matches every version.
func (t ViewerToken) Matches(name, version string) bool {
	if t.Name != strings.ToLower(strings.TrimSpace(name)) {
		return false
	}
	return t.Version == "" || t.Version == version
}
