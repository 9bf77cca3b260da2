// Package relpath computes root-relative URL prefixes for output pages.
package relpath

import "strings"

// RootPrefix returns the prefix that leads from outputPath back to the output root.
// Separators are always "/", independent of the host OS.
func RootPrefix(outputPath string) string {
	depth := strings.Count(outputPath, "/")
	if depth == 0 {
		return "./"
	}
	return strings.Repeat("../", depth)
}

// Join prefixes target with the root prefix of outputPath.
func Join(outputPath, target string) string {
	return RootPrefix(outputPath) + target
}
