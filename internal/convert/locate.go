package convert

import (
	"fmt"
	"os"
	"os/exec"
)

// Homebrew's libgxps is keg-only on some systems, so xpstopdf may be
// installed outside PATH.
var DefaultFallbackPaths = []string{
	"/opt/homebrew/opt/libgxps/bin/xpstopdf",
	"/usr/local/opt/libgxps/bin/xpstopdf",
}

// Locate resolves the converter binary: PATH lookup first, then the first
// existing candidate from the ordered fallback list.
func Locate(binary string, candidates []string) (string, error) {
	if found, err := exec.LookPath(binary); err == nil {
		return found, nil
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}

	return "", fmt.Errorf("missing `%s`. Install it with: brew install libgxps", binary)
}
