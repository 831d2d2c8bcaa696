package walk

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ignoreRule is one compiled line of a VCS-style ignore file.
type ignoreRule struct {
	pattern  string
	negate   bool
	dirOnly  bool
	anchored bool
}

// ignoreSet is a small VCS-ignore-file matcher (.gitignore-style: one
// glob per line, leading "!" negates, trailing "/" restricts the rule
// to directories, a leading "/" anchors the pattern to the walk root).
// Rules from every ignore file, nested ones included, are matched
// against root-relative paths, so an anchored or slash-containing
// pattern in a nested ignore file is not relative to that file's
// directory. No ignore-file library appears anywhere in
// the retrieved pack, so this is deliberately minimal stdlib glob
// matching rather than a full gitignore implementation; see DESIGN.md.
type ignoreSet struct {
	rules []ignoreRule
}

// loadIgnoreFile reads the ignore file (".gitignore"-shaped) at path
// and appends its rules to the set. Missing files are not an
// error: most directories simply don't have one.
func (s *ignoreSet) loadIgnoreFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule := ignoreRule{pattern: line}
		if strings.HasPrefix(rule.pattern, "!") {
			rule.negate = true
			rule.pattern = rule.pattern[1:]
		}
		if strings.HasSuffix(rule.pattern, "/") {
			rule.dirOnly = true
			rule.pattern = strings.TrimSuffix(rule.pattern, "/")
		}
		if strings.HasPrefix(rule.pattern, "/") {
			rule.anchored = true
			rule.pattern = strings.TrimPrefix(rule.pattern, "/")
		}
		if rule.pattern == "" {
			continue
		}
		s.rules = append(s.rules, rule)
	}
	return sc.Err()
}

// matches reports whether relPath (forward-slash separated, relative
// to the walk root) should be ignored; isDir gates
// dirOnly rules. Later rules override earlier ones, and a trailing
// negated match always wins, mirroring .gitignore's last-match-wins
// semantics.
func (s *ignoreSet) matches(relPath string, isDir bool) bool {
	ignored := false
	base := filepath.Base(relPath)
	for _, r := range s.rules {
		if r.dirOnly && !isDir {
			continue
		}
		var hit bool
		if r.anchored {
			hit, _ = filepath.Match(r.pattern, relPath)
		} else {
			if ok, _ := filepath.Match(r.pattern, base); ok {
				hit = true
			} else if ok, _ := filepath.Match(r.pattern, relPath); ok {
				hit = true
			}
		}
		if hit {
			ignored = !r.negate
		}
	}
	return ignored
}

// clone returns a copy of the set, used when descending into a child
// directory that may itself contribute more rules (ignore files
// compose: a subdirectory's .gitignore adds to, never replaces, its
// ancestors').
func (s *ignoreSet) clone() *ignoreSet {
	cp := &ignoreSet{rules: make([]ignoreRule, len(s.rules))}
	copy(cp.rules, s.rules)
	return cp
}
