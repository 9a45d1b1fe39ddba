package snapshot

import (
	"bufio"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// IgnoreFiles are read from the root of the source directory, in order. Lines follow
// the gitignore rules: blank lines and # comments are skipped, a leading ! re-includes
// what an earlier line excluded, a trailing / matches directories only, a / anywhere
// else anchors the pattern to the root and ** matches any number of directories. The
// last matching line decides. A file below an excluded directory cannot be
// re-included.
var IgnoreFiles = []string{".amlignore", ".gitignore"}

type ignoreRule struct {
	segments []string
	negate   bool
	dirOnly  bool
}

type ignoreRules []ignoreRule

func parseIgnoreRule(line string) (ignoreRule, bool) {
	var r ignoreRule

	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return r, false
	}

	if strings.HasPrefix(line, "!") {
		r.negate = true
		line = line[1:]
	} else if strings.HasPrefix(line, `\!`) || strings.HasPrefix(line, `\#`) {
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimRight(line, "/")
	}

	anchored := strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return r, false
	}

	r.segments = strings.Split(line, "/")
	if !anchored {
		r.segments = append([]string{"**"}, r.segments...)
	}

	return r, true
}

func (r ignoreRule) match(rel string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}

	return matchSegments(r.segments, strings.Split(rel, "/"))
}

func matchSegments(pattern, name []string) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}

	if pattern[0] == "**" {
		for i := 0; i <= len(name); i++ {
			if matchSegments(pattern[1:], name[i:]) {
				return true
			}
		}

		return false
	}

	if len(name) == 0 {
		return false
	}

	ok, err := path.Match(pattern[0], name[0])
	if err != nil || !ok {
		return false
	}

	return matchSegments(pattern[1:], name[1:])
}

// ignored reports whether the slash separated relative path is excluded.
func (rs ignoreRules) ignored(rel string, isDir bool) bool {
	excluded := false
	for _, r := range rs {
		if r.match(rel, isDir) {
			excluded = !r.negate
		}
	}

	return excluded
}

func readIgnoreRules(dir string) (ignoreRules, error) {
	var rules ignoreRules

	for _, name := range IgnoreFiles {
		f, err := os.Open(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to open %s", name)
		}

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if r, ok := parseIgnoreRule(scanner.Text()); ok {
				rules = append(rules, r)
			}
		}
		err = scanner.Err()
		f.Close() //nolint:errcheck,gosec // read only
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read %s", name)
		}
	}

	return rules, nil
}
