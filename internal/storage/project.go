package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	tferrors "github.com/abatilo/taskflow/internal/errors"
)

// nonAlnum matches runs of characters that are unsafe in a directory name.
var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FindProjectRoot walks up from start looking for a .git directory.
// Returns the directory containing .git, or NotInRepoError if none is found.
func FindProjectRoot(start string) (string, error) {
	dir := start
	for {
		info, err := os.Stat(filepath.Join(dir, ".git"))
		if err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", tferrors.NotInRepoError{}
		}
		dir = parent
	}
}

// SanitizePath converts an absolute path to a safe directory name.
// "/Users/abatilo/myproject" -> "Users-abatilo-myproject"
func SanitizePath(path string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(path, "-"), "-")
}
