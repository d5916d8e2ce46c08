package preflight

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"instastudio/internal/config"
)

// CheckInstagramFromConfig evaluates publishing status from config and connectivity.
func CheckInstagramFromConfig(cfg *config.Config) Result {
	const name = "Instagram"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Instagram.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(cfg.Instagram.AccessToken) == "" {
		return Result{Name: name, Detail: "Missing access token"}
	}
	if strings.TrimSpace(cfg.Instagram.BusinessAccountID) == "" {
		return Result{Name: name, Detail: "Missing business account id"}
	}
	return CheckInstagram(context.Background(), cfg.Instagram)
}

// CheckNotificationsFromConfig evaluates push notification status from config.
func CheckNotificationsFromConfig(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Topic %s", cfg.Notifications.NtfyTopic)}
}

// DiskStatus reports a filesystem usage snapshot for status UIs.
type DiskStatus struct {
	Path       string
	TotalBytes uint64
	FreeBytes  uint64
}

// ProbeDisk reads disk usage for the given path.
func ProbeDisk(path string) (DiskStatus, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return DiskStatus{Path: path}, fmt.Errorf("statfs %s: %w", path, err)
	}
	return DiskStatus{
		Path:       path,
		TotalBytes: stat.Blocks * uint64(stat.Bsize),
		FreeBytes:  stat.Bavail * uint64(stat.Bsize),
	}, nil
}

// Detail renders a display-friendly summary.
func (d DiskStatus) Detail() string {
	if d.TotalBytes == 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%.1f GiB free of %.1f GiB on %s",
		float64(d.FreeBytes)/(1<<30), float64(d.TotalBytes)/(1<<30), d.Path)
}
