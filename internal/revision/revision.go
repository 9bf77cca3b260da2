// Package revision reads the commit the documentation sources are checked out at.
package revision

import (
	"errors"
	"fmt"

	ggit "github.com/go-git/go-git/v5"
)

// ShortLength is the number of hex digits kept from a commit hash.
const ShortLength = 7

// ErrNotRepository is returned when dir is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Head returns the abbreviated HEAD commit hash of the repository containing dir.
func Head(dir string) (string, error) {
	repo, err := ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, ggit.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%s: %w", dir, ErrNotRepository)
		}
		return "", fmt.Errorf("open repository %s: %w", dir, err)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD in %s: %w", dir, err)
	}

	hash := ref.Hash().String()
	if len(hash) > ShortLength {
		hash = hash[:ShortLength]
	}
	return hash, nil
}
