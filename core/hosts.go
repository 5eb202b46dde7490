package core

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Marker lines delimiting the section of the hosts file owned by focus-cli.
// Everything between them (inclusive) is rewritten on every activation;
// everything outside is preserved byte for byte.
const (
	MarkerStart = "# focus-cli START"
	MarkerEnd   = "# focus-cli END"
)

// RemoveSection drops the marker-delimited blocklist section from lines,
// along with the single blank separator line inserted before it, so that
// adding and removing a section round-trips exactly. A start marker without
// a matching end marker drops everything through end-of-input rather than
// leaving a half-open section. Without a start marker the input is returned
// unchanged.
func RemoveSection(lines []string) []string {
	out := make([]string, 0, len(lines))
	inSection := false

	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if !inSection && trim == MarkerStart {
			inSection = true
			if n := len(out); n > 0 && strings.TrimSpace(out[n-1]) == "" {
				out = out[:n-1]
			}
			continue
		}
		if inSection {
			if trim == MarkerEnd {
				inSection = false
			}
			continue
		}
		out = append(out, line)
	}
	return out
}

// AddSection rewrites the blocklist section: any previous section is removed
// first, then a fresh one is appended with one "<ip> <domain>" line per
// domain in lexicographic order. Applying AddSection twice yields the same
// result as applying it once.
func AddSection(lines []string, domains []string, redirectIP string) []string {
	out := RemoveSection(lines)

	sorted := make([]string, len(domains))
	copy(sorted, domains)
	sort.Strings(sorted)

	out = append(out, "", MarkerStart)
	for _, d := range sorted {
		out = append(out, redirectIP+" "+d)
	}
	return append(out, MarkerEnd)
}

// HostsPath returns the platform's static host-resolution file.
func HostsPath() string {
	if runtime.GOOS == "windows" {
		windir := os.Getenv("SystemRoot")
		if windir == "" {
			windir = `C:\Windows`
		}
		return filepath.Join(windir, "System32", "drivers", "etc", "hosts")
	}
	return "/etc/hosts"
}

// ReadHostsLines reads the hosts file as a slice of lines, newlines stripped.
func ReadHostsLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// WriteHostsLines writes lines back atomically (temp file + rename) so other
// processes never observe a truncated hosts file.
func WriteHostsLines(path string, lines []string) error {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write temp failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace failed: %w", err)
	}
	return nil
}

// CheckRootPrivileges reports whether the process can expect to write the
// hosts file. On Windows the ACL story is different enough that we just try.
func CheckRootPrivileges() bool {
	if runtime.GOOS == "windows" {
		return true
	}
	currentUser, err := user.Current()
	if err != nil {
		return false
	}
	return currentUser.Uid == "0"
}
