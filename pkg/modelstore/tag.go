package modelstore

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	nameRE    = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*$`)
	versionRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)
)

// Tag identifies an artifact in the store as name[:version].
type Tag struct {
	Name    string
	Version string
}

// ParseTag parses "name" or "name:version".
func ParseTag(s string) (Tag, error) {
	name, version, found := strings.Cut(s, ":")
	if !nameRE.MatchString(name) {
		return Tag{}, fmt.Errorf("invalid tag %q, name must be lowercase alphanumerics separated by '.', '_' or '-'", s)
	}
	if found && !versionRE.MatchString(version) {
		return Tag{}, fmt.Errorf("invalid tag %q, bad version", s)
	}
	return Tag{Name: name, Version: version}, nil
}

func (t Tag) String() string {
	if t.Version == "" {
		return t.Name
	}
	return t.Name + ":" + t.Version
}

// WithGeneratedVersion fills in a fresh version when none was given.
func (t Tag) WithGeneratedVersion() Tag {
	if t.Version != "" {
		return t
	}
	t.Version = GenerateVersion()
	return t
}

// GenerateVersion returns a sortable timestamp with a short unique suffix.
func GenerateVersion() string {
	return time.Now().UTC().Format("20060102150405") + "-" + uuid.NewString()[:8]
}
