package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	git "github.com/go-git/go-git/v5"
)

// Version is overridden at link time with -ldflags "-X ...common.Version=...".
var Version = "dev"

const shortHashLen = 8

type BuildInfo struct {
	Version   string
	Commit    string
	GoVersion string
	Platform  string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("intcode %s (commit %s, %s, %s)", b.Version, b.Commit, b.GoVersion, b.Platform)
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    GetCommitHash(),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetCommitHash looks for a git checkout around the working directory, then
// around the executable, and returns the short HEAD hash or "unknown".
func GetCommitHash() string {
	if cwd, err := os.Getwd(); err == nil {
		if hash := CommitHashAt(cwd); hash != "" {
			return hash
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if hash := CommitHashAt(filepath.Dir(exePath)); hash != "" {
			return hash
		}
	}
	return "unknown"
}

// CommitHashAt returns the short HEAD hash of the repository containing path,
// or "" when path is not inside a repository with a resolvable HEAD.
func CommitHashAt(path string) string {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	hash := head.Hash().String()
	if len(hash) > shortHashLen {
		return hash[:shortHashLen]
	}
	return hash
}
