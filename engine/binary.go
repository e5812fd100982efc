package engine

import (
	"os"
	"path/filepath"
)

// DefaultBuildDir is where the inference binary is built by default.
const DefaultBuildDir = "build"

// ResolveBinary returns the path of the llama-cli executable inside
// buildDir for the given GOOS. Windows builds land under bin/Release; when
// that file is missing the plain bin path is used instead.
func ResolveBinary(buildDir, goos string) string {
	plain := filepath.Join(buildDir, "bin", "llama-cli")
	if goos != "windows" {
		return plain
	}
	release := filepath.Join(buildDir, "bin", "Release", "llama-cli.exe")
	if _, err := os.Stat(release); err != nil {
		return plain
	}
	return release
}
