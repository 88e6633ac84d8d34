package config

import (
	"fmt"
	"strings"
)

// ValidationError reports an invalid configuration value together with the
// file position it was read from, when known.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.Modifier != nil {
		cfg.Modifier = strings.ToLower(strings.TrimSpace(*raw.Modifier))
	}
	if raw.FocusFollowsPointer != nil {
		cfg.FocusFollowsPointer = *raw.FocusFollowsPointer
	}
	if raw.StatusInterval != nil {
		cfg.StatusInterval = *raw.StatusInterval
	}

	if raw.Layout != nil {
		if raw.Layout.Default != nil {
			cfg.Layout.Default = *raw.Layout.Default
		}
		if raw.Layout.MasterRatio != nil {
			cfg.Layout.MasterRatio = *raw.Layout.MasterRatio
		}
		if raw.Layout.DefaultSplit != nil {
			cfg.Layout.DefaultSplit = *raw.Layout.DefaultSplit
		}
	}

	if raw.Bar != nil {
		if raw.Bar.Height != nil {
			cfg.Bar.Height = *raw.Bar.Height
		}
		if raw.Bar.Visible != nil {
			cfg.Bar.Visible = *raw.Bar.Visible
		}
		if raw.Bar.CellWidth != nil {
			cfg.Bar.CellWidth = *raw.Bar.CellWidth
		}
		if raw.Bar.WorkspaceIcons != nil {
			cfg.Bar.WorkspaceIcons = raw.Bar.WorkspaceIcons
		}
		if raw.Bar.Modules != nil {
			cfg.Bar.Modules = raw.Bar.Modules
		}
	}

	for key, action := range raw.Bindings {
		if strings.TrimSpace(action) == "" || strings.EqualFold(strings.TrimSpace(action), "none") {
			delete(cfg.Bindings, key)
			continue
		}
		cfg.Bindings[key] = action
	}

	return cfg, nil
}
