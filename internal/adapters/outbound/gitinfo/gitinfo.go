// Package gitinfo resolves the repository metadata recorded in the
// profile's discovery header.
package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Resolver implements domain.GitInfo on top of go-git. Discovery always
// runs from the repository root, so no parent-directory search is done.
type Resolver struct{}

func New() *Resolver { return &Resolver{} }

// IsGitRepo reports whether root holds a git repository.
func (r *Resolver) IsGitRepo(root string) bool {
	_, err := git.PlainOpen(root)
	return err == nil
}

// CommitHash returns the hash of HEAD. A repository without commits has
// no resolvable HEAD and returns an error; the caller treats that as
// "no commit hash", not as a failed run.
func (r *Resolver) CommitHash(root string) (string, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return "", fmt.Errorf("opening repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
