package devops

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var guidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// QueryRef identifies a saved query within a project.
type QueryRef struct {
	Organization string
	Project      string
	QueryID      string
}

// ParseQueryURL extracts the organization, project and query id from a saved
// query link such as https://dev.azure.com/{org}/{project}/_queries/query/{id}/.
func ParseQueryURL(raw string) (QueryRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return QueryRef{}, fmt.Errorf("invalid query url: %w", err)
	}

	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	legacyHost := strings.HasSuffix(strings.ToLower(u.Hostname()), ".visualstudio.com")
	if legacyHost && len(segments) > 0 && strings.EqualFold(segments[0], "DefaultCollection") {
		segments = segments[1:]
	}

	idx := -1
	for i, seg := range segments {
		if seg == "_queries" {
			idx = i
			break
		}
	}

	var ref QueryRef
	var prefix []string
	switch {
	case legacyHost && idx == 1:
		// {org}.visualstudio.com[/DefaultCollection]/{project}/_queries/{kind}/{id}
		org := u.Hostname()
		prefix = []string{org[:len(org)-len(".visualstudio.com")], segments[0]}
	case !legacyHost && idx == 2:
		// dev.azure.com/{org}/{project}/_queries/{kind}/{id}
		prefix = segments[:2]
	}
	if prefix == nil || len(segments) < idx+3 {
		return QueryRef{}, fmt.Errorf("invalid query url %q: expected /{organization}/{project}/_queries/query/{id}", raw)
	}

	if ref.Organization, err = url.PathUnescape(prefix[0]); err != nil {
		return QueryRef{}, fmt.Errorf("invalid organization in query url: %w", err)
	}
	if ref.Project, err = url.PathUnescape(prefix[1]); err != nil {
		return QueryRef{}, fmt.Errorf("invalid project in query url: %w", err)
	}

	ref.QueryID = segments[idx+2]
	if !guidPattern.MatchString(ref.QueryID) {
		return QueryRef{}, fmt.Errorf("invalid query id %q in query url", ref.QueryID)
	}
	return ref, nil
}
