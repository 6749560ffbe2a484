package schema

import "strings"

// ShortSHA abbreviates a commit hash for display.
func ShortSHA(sha string) string {
	if len(sha) > 10 {
		return sha[:10]
	}
	return sha
}

// SplitRepo splits an owner/name slug into its parts. The name is empty
// when the slug has no slash.
func SplitRepo(repo string) (owner, name string) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok {
		return repo, ""
	}
	return owner, name
}
