package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawLayout struct {
	Default      *LayoutMode `yaml:"default"`
	MasterRatio  *float64    `yaml:"master_ratio"`
	DefaultSplit *SplitAxis  `yaml:"default_split"`
}

type RawBar struct {
	Height         *int        `yaml:"height"`
	Visible        *bool       `yaml:"visible"`
	CellWidth      *int        `yaml:"cell_width"`
	WorkspaceIcons []string    `yaml:"workspace_icons"`
	Modules        []BarModule `yaml:"modules"`
}

// RawConfig mirrors Config with optional fields so that files can be merged
// before defaults are applied.
type RawConfig struct {
	Include             IncludeList       `yaml:"include"`
	LogLevel            *string           `yaml:"log_level"`
	Modifier            *string           `yaml:"modifier"`
	FocusFollowsPointer *bool             `yaml:"focus_follows_pointer"`
	StatusInterval      *time.Duration    `yaml:"status_interval"`
	Layout              *RawLayout        `yaml:"layout"`
	Bar                 *RawBar           `yaml:"bar"`
	Bindings            map[string]string `yaml:"bindings"`
}

// merge overlays other on top of r. Later files win field by field; bindings
// merge key by key.
func (r RawConfig) merge(other RawConfig) RawConfig {
	out := r
	if other.LogLevel != nil {
		out.LogLevel = other.LogLevel
	}
	if other.Modifier != nil {
		out.Modifier = other.Modifier
	}
	if other.FocusFollowsPointer != nil {
		out.FocusFollowsPointer = other.FocusFollowsPointer
	}
	if other.StatusInterval != nil {
		out.StatusInterval = other.StatusInterval
	}
	if other.Layout != nil {
		merged := RawLayout{}
		if out.Layout != nil {
			merged = *out.Layout
		}
		if other.Layout.Default != nil {
			merged.Default = other.Layout.Default
		}
		if other.Layout.MasterRatio != nil {
			merged.MasterRatio = other.Layout.MasterRatio
		}
		if other.Layout.DefaultSplit != nil {
			merged.DefaultSplit = other.Layout.DefaultSplit
		}
		out.Layout = &merged
	}
	if other.Bar != nil {
		merged := RawBar{}
		if out.Bar != nil {
			merged = *out.Bar
		}
		if other.Bar.Height != nil {
			merged.Height = other.Bar.Height
		}
		if other.Bar.Visible != nil {
			merged.Visible = other.Bar.Visible
		}
		if other.Bar.CellWidth != nil {
			merged.CellWidth = other.Bar.CellWidth
		}
		if other.Bar.WorkspaceIcons != nil {
			merged.WorkspaceIcons = other.Bar.WorkspaceIcons
		}
		if other.Bar.Modules != nil {
			merged.Modules = other.Bar.Modules
		}
		out.Bar = &merged
	}
	if other.Bindings != nil {
		bindings := make(map[string]string, len(out.Bindings)+len(other.Bindings))
		for key, action := range out.Bindings {
			bindings[key] = action
		}
		for key, action := range other.Bindings {
			bindings[key] = action
		}
		out.Bindings = bindings
	}
	return out
}
