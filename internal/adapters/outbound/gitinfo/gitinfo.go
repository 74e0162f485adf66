package gitinfo

import (
	"fmt"
	"path/filepath"

	"github.com/complykit/complykit/internal/domain"
	"github.com/go-git/go-git/v5"
)

// GitInfoAdapter implements domain.GitInfo using go-git. Paths inside a
// working tree resolve to the enclosing repository.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func (g *GitInfoAdapter) IsGitRepo(projectPath string) bool {
	_, err := open(projectPath)
	return err == nil
}

func (g *GitInfoAdapter) CommitHash(projectPath string) (string, error) {
	repo, err := open(projectPath)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// VcsInfo describes the checkout containing projectPath: the origin URL if
// there is one, the HEAD revision and the path relative to the working tree
// root.
func (g *GitInfoAdapter) VcsInfo(projectPath string) (domain.VcsInfo, error) {
	repo, err := open(projectPath)
	if err != nil {
		return domain.VcsInfo{}, err
	}

	info := domain.VcsInfo{Type: "Git"}

	head, err := repo.Head()
	if err != nil {
		return domain.VcsInfo{}, fmt.Errorf("getting HEAD: %w", err)
	}
	info.Revision = head.Hash().String()

	if remote, err := repo.Remote(git.DefaultRemoteName); err == nil && len(remote.Config().URLs) > 0 {
		info.URL = remote.Config().URLs[0]
	}

	wt, err := repo.Worktree()
	if err != nil {
		return domain.VcsInfo{}, fmt.Errorf("opening worktree: %w", err)
	}
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return domain.VcsInfo{}, err
	}
	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		return domain.VcsInfo{}, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if rel, err := filepath.Rel(root, abs); err == nil && rel != "." {
		info.Path = filepath.ToSlash(rel)
	}

	return info, nil
}

func open(projectPath string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}
	return repo, nil
}
