// Package git resolves repository context from the local working copy so
// the CLI can default owner/repo without flags.
package git

import (
	"fmt"
	"strings"

	goGit "github.com/go-git/go-git/v5"
)

// Origin identifies the GitHub repository the local clone tracks.
type Origin struct {
	Owner string
	Repo  string
}

// DetectOrigin opens the repository containing dir (walking up to find
// .git) and parses the origin remote URL into owner and repo.
func DetectOrigin(dir string) (Origin, error) {
	repo, err := goGit.PlainOpenWithOptions(dir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Origin{}, fmt.Errorf("open repo: %w", err)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return Origin{}, fmt.Errorf("no origin remote: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return Origin{}, fmt.Errorf("origin remote has no URL")
	}
	return ParseRemoteURL(urls[0])
}

// ParseRemoteURL extracts owner and repo from a git remote URL. Both SSH
// (git@github.com:owner/repo.git) and HTTPS
// (https://github.com/owner/repo.git) forms are supported.
func ParseRemoteURL(url string) (Origin, error) {
	path := url

	switch {
	case strings.HasPrefix(url, "git@"):
		// git@host:owner/repo.git
		_, after, found := strings.Cut(url, ":")
		if !found {
			return Origin{}, fmt.Errorf("malformed SSH remote URL %q", url)
		}
		path = after
	case strings.HasPrefix(url, "ssh://"):
		// ssh://git@host/owner/repo.git
		rest := strings.TrimPrefix(url, "ssh://")
		_, after, found := strings.Cut(rest, "/")
		if !found {
			return Origin{}, fmt.Errorf("malformed SSH remote URL %q", url)
		}
		path = after
	case strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://"):
		rest := url[strings.Index(url, "://")+3:]
		_, after, found := strings.Cut(rest, "/")
		if !found {
			return Origin{}, fmt.Errorf("malformed HTTPS remote URL %q", url)
		}
		path = after
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Origin{}, fmt.Errorf("cannot derive owner/repo from remote URL %q", url)
	}

	return Origin{Owner: parts[0], Repo: parts[1]}, nil
}
