// Package ffmpeg wraps the ffmpeg command-line tool behind a Runner
// interface so editing code can be tested without media binaries installed.
package ffmpeg
