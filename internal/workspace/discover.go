package workspace

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Discover reads the raw metadata of the git working copy containing path.
// Values it cannot determine (no origin remote, no commits yet) are left empty
// so that Parse reports them as missing fields.
//
// The working copy identifier is the hash of the root commit reachable from
// HEAD, which stays stable across clones of the same repository.
func Discover(path string) (Raw, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Raw{}, fmt.Errorf("failed to open git working copy at %s: %w", path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return Raw{}, fmt.Errorf("failed to get worktree: %w", err)
	}
	root := worktree.Filesystem.Root()

	raw := Raw{
		ProjectName:     filepath.Base(root),
		ProjectPath:     root,
		WorkingCopyName: filepath.Base(root),
	}

	remote, err := repo.Remote(git.DefaultRemoteName)
	switch {
	case err == nil:
		if urls := remote.Config().URLs; len(urls) > 0 {
			raw.ProjectURL = urls[0]
		}
	case !errors.Is(err, git.ErrRemoteNotFound):
		return Raw{}, fmt.Errorf("failed to read remote %s: %w", git.DefaultRemoteName, err)
	}

	rootHash, err := rootCommit(repo)
	switch {
	case err == nil:
		raw.WorkingCopyIdentifier = rootHash.String()
	case !errors.Is(err, plumbing.ErrReferenceNotFound):
		return Raw{}, fmt.Errorf("failed to resolve root commit: %w", err)
	}

	return raw, nil
}

// DiscoverMetadata is Discover followed by Parse. A non-empty urlOverride
// replaces the origin URL.
func DiscoverMetadata(path, urlOverride string, opts ...Option) (Metadata, error) {
	raw, err := Discover(path)
	if err != nil {
		return Metadata{}, err
	}
	if urlOverride != "" {
		raw.ProjectURL = urlOverride
	}
	return Parse(raw, opts...)
}

// rootCommit follows first parents from HEAD down to the initial commit.
func rootCommit(repo *git.Repository) (plumbing.Hash, error) {
	head, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get commit object: %w", err)
	}
	for commit.NumParents() > 0 {
		commit, err = commit.Parent(0)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("failed to walk commit parents: %w", err)
		}
	}
	return commit.Hash, nil
}
