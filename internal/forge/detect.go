package forge

import "strings"

// Detect returns the appropriate Forge implementation based on the remote
// URL. Falls back to GitHub if the platform cannot be determined.
func Detect(remoteURL string) Forge {
	if isGitLab(remoteURL) {
		return &GitLab{}
	}
	return &GitHub{}
}

// ByName returns a Forge implementation by name.
// Supported names: "github", "gitlab". Unknown names default to GitHub.
func ByName(name string) Forge {
	switch strings.ToLower(name) {
	case "gitlab":
		return &GitLab{}
	default:
		return &GitHub{}
	}
}

func isGitLab(url string) bool {
	url = strings.ToLower(url)
	if strings.Contains(url, "gitlab.com") || strings.Contains(url, "gitlab.") || strings.Contains(url, "/gitlab/") {
		return true
	}
	return false
}
