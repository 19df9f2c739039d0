package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) plumbing.Hash {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "MyProject")
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{"git@github.com:me/my-project.git"},
	})
	require.NoError(t, err)

	first := commitFile(t, repo, dir, "README.md", "hello")
	commitFile(t, repo, dir, "main.go", "package main")

	subdir := filepath.Join(dir, "Sources")
	require.NoError(t, os.MkdirAll(subdir, 0750))

	raw, err := Discover(subdir)
	require.NoError(t, err)

	assert.Equal(t, "MyProject", raw.ProjectName)
	assert.Equal(t, "MyProject", raw.WorkingCopyName)
	assert.Equal(t, dir, raw.ProjectPath)
	assert.Equal(t, "git@github.com:me/my-project.git", raw.ProjectURL)
	assert.Equal(t, first.String(), raw.WorkingCopyIdentifier)

	md, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, CheckoutTypeSSH, md.CheckoutType())
}

func TestDiscover_EmptyRepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	raw, err := Discover(dir)
	require.NoError(t, err)
	assert.Empty(t, raw.ProjectURL)
	assert.Empty(t, raw.WorkingCopyIdentifier)

	_, err = Parse(raw)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, FieldWorkingCopyIdentifier, missing.Field)
}

func TestDiscover_NotARepository(t *testing.T) {
	t.Parallel()

	_, err := Discover(t.TempDir())
	require.Error(t, err)
}

func TestDiscoverMetadata_URLOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, repo, dir, "README.md", "hello")

	md, err := DiscoverMetadata(dir, "github.com:me/override.git")
	require.NoError(t, err)
	assert.Equal(t, "git@github.com:me/override.git", md.URL().String())
}
