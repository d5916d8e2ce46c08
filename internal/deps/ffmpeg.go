package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFmpegPath returns the ffmpeg binary the toolchain will execute. An
// explicitly configured path wins; otherwise "ffmpeg" is resolved from PATH.
func ResolveFFmpegPath(configured string) string {
	configured = strings.TrimSpace(configured)
	if configured != "" && configured != "ffmpeg" {
		return configured
	}
	return "ffmpeg"
}

// ResolveFFprobePath returns the ffprobe binary the toolchain will execute.
// ffprobe normally ships in the same directory as ffmpeg, so when no explicit
// path is configured the resolver prefers a sibling of the resolved ffmpeg
// binary before falling back to PATH lookup.
func ResolveFFprobePath(ffmpegCommand, configured string) string {
	configured = strings.TrimSpace(configured)
	if configured != "" && configured != "ffprobe" {
		return configured
	}

	ffmpegBinary := strings.TrimSpace(ffmpegCommand)
	if ffmpegBinary != "" {
		if resolved, err := exec.LookPath(ffmpegBinary); err == nil {
			if candidate, ok := siblingCandidate(resolved, "ffprobe"); ok {
				if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
					return candidate
				}
			}
		}
	}
	return "ffprobe"
}

func siblingCandidate(resolvedPath, name string) (string, bool) {
	if resolvedPath == "" {
		return "", false
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(resolvedPath), name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
