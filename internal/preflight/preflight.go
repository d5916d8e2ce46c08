package preflight

import (
	"context"

	"instastudio/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunChecks executes all applicable readiness checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunChecks(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Working directories (always checked)
	results = append(results, CheckDirectoryAccess("Workspace directory", cfg.Paths.WorkspaceDir))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	if cfg.Paths.MusicDir != "" {
		results = append(results, CheckDirectoryAccess("Music directory", cfg.Paths.MusicDir))
	}
	results = append(results, CheckDiskSpace("Workspace disk space", cfg.Paths.WorkspaceDir, minFreeBytes))

	// Media toolchain binaries
	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
		}
		if status.Optional && !status.Available {
			result.Passed = true
			result.Detail = status.Detail + " (optional)"
		}
		results = append(results, result)
	}

	// Language model endpoint
	results = append(results, CheckLLM(ctx, "LLM API", cfg.LLM))

	// Publishing platform
	if cfg.Instagram.Enabled {
		results = append(results, CheckInstagram(ctx, cfg.Instagram))
	}

	return results
}
