package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/weft-lang/weft/internal/cli/config"
	"github.com/weft-lang/weft/internal/host"
)

// buildWorkspace turns the configured projects into a host workspace.
func buildWorkspace(cfg *config.Config) (*host.StaticWorkspace, error) {
	projects := make([]host.Project, 0, len(cfg.Projects))
	for _, pc := range cfg.Projects {
		root, err := filepath.Abs(pc.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root of project %q: %w", pc.Name, err)
		}

		deps := make([]host.ModuleMapping, 0, len(pc.Dependencies))
		for _, dc := range pc.Dependencies {
			depRoot, err := filepath.Abs(dc.Root)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve dependency root %q: %w", dc.Root, err)
			}
			deps = append(deps, host.ModuleMapping{Module: dc.Module, Root: depRoot})
		}

		projects = append(projects, host.NewGoProject(pc.Name, host.ModuleMapping{
			Module: pc.Module,
			Root:   root,
		}, deps...))
	}
	return host.NewStaticWorkspace(projects...), nil
}

// buildLogger creates a zap logger at the configured level, writing to
// stderr so it never corrupts the LSP stdout stream.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Log.Level != "" {
		if err := level.Set(strings.ToLower(cfg.Log.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
		}
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}
