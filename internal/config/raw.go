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

type RawStatusBar struct {
	Kind                *string  `yaml:"kind"`
	Command             *string  `yaml:"command"`
	Args                []string `yaml:"args"`
	TitleLength         *int     `yaml:"title_length"`
	ClientColor         *string  `yaml:"client_color"`
	SelectedClientColor *string  `yaml:"selected_client_color"`
	TagColor            *string  `yaml:"tag_color"`
	SelectedTagColor    *string  `yaml:"selected_tag_color"`
}

type RawPrompt struct {
	Backend *string  `yaml:"backend"`
	Args    []string `yaml:"args"`
}

// RawConfig is one file's worth of settings. Nil fields were not set.
type RawConfig struct {
	Include            IncludeList    `yaml:"include"`
	LogLevel           *string        `yaml:"log_level"`
	Modifier           *string        `yaml:"modifier"`
	BorderWidth        *int           `yaml:"border_width"`
	BarHeight          *int           `yaml:"bar_height"`
	OverviewInset      *int           `yaml:"overview_inset"`
	MoveDelta          *int           `yaml:"move_delta"`
	ExpandDelta        *int           `yaml:"expand_delta"`
	FocusedBorderColor *string        `yaml:"focused_border_color"`
	NormalBorderColor  *string        `yaml:"normal_border_color"`
	DragTimeout        *time.Duration `yaml:"drag_timeout"`
	EnvFile            *string        `yaml:"env_file"`
	Tags               []TagConfig    `yaml:"tags"`
	Keys               []KeyBinding   `yaml:"keys"`
	Rules              []Rule         `yaml:"rules"`
	DefaultRules       *bool          `yaml:"default_rules"`
	Startup            []string       `yaml:"startup"`
	StatusBar          *RawStatusBar  `yaml:"status_bar"`
	Prompt             *RawPrompt     `yaml:"prompt"`
}

// merge layers overlay on top of c. Scalars are replaced, tags and startup
// lists are replaced wholesale, keys are merged by key sequence and rules are
// appended.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Modifier != nil {
		out.Modifier = overlay.Modifier
	}
	if overlay.BorderWidth != nil {
		out.BorderWidth = overlay.BorderWidth
	}
	if overlay.BarHeight != nil {
		out.BarHeight = overlay.BarHeight
	}
	if overlay.OverviewInset != nil {
		out.OverviewInset = overlay.OverviewInset
	}
	if overlay.MoveDelta != nil {
		out.MoveDelta = overlay.MoveDelta
	}
	if overlay.ExpandDelta != nil {
		out.ExpandDelta = overlay.ExpandDelta
	}
	if overlay.FocusedBorderColor != nil {
		out.FocusedBorderColor = overlay.FocusedBorderColor
	}
	if overlay.NormalBorderColor != nil {
		out.NormalBorderColor = overlay.NormalBorderColor
	}
	if overlay.DragTimeout != nil {
		out.DragTimeout = overlay.DragTimeout
	}
	if overlay.EnvFile != nil {
		out.EnvFile = overlay.EnvFile
	}
	if overlay.Tags != nil {
		out.Tags = append([]TagConfig(nil), overlay.Tags...)
	}
	if overlay.Keys != nil {
		out.Keys = mergeKeys(out.Keys, overlay.Keys)
	}
	if overlay.Rules != nil {
		out.Rules = append(append([]Rule(nil), out.Rules...), overlay.Rules...)
	}
	if overlay.DefaultRules != nil {
		out.DefaultRules = overlay.DefaultRules
	}
	if overlay.Startup != nil {
		out.Startup = append([]string(nil), overlay.Startup...)
	}
	if overlay.StatusBar != nil {
		merged := RawStatusBar{}
		if out.StatusBar != nil {
			merged = *out.StatusBar
		}
		sb := overlay.StatusBar
		if sb.Kind != nil {
			merged.Kind = sb.Kind
		}
		if sb.Command != nil {
			merged.Command = sb.Command
		}
		if sb.Args != nil {
			merged.Args = sb.Args
		}
		if sb.TitleLength != nil {
			merged.TitleLength = sb.TitleLength
		}
		if sb.ClientColor != nil {
			merged.ClientColor = sb.ClientColor
		}
		if sb.SelectedClientColor != nil {
			merged.SelectedClientColor = sb.SelectedClientColor
		}
		if sb.TagColor != nil {
			merged.TagColor = sb.TagColor
		}
		if sb.SelectedTagColor != nil {
			merged.SelectedTagColor = sb.SelectedTagColor
		}
		out.StatusBar = &merged
	}
	if overlay.Prompt != nil {
		merged := RawPrompt{}
		if out.Prompt != nil {
			merged = *out.Prompt
		}
		if overlay.Prompt.Backend != nil {
			merged.Backend = overlay.Prompt.Backend
		}
		if overlay.Prompt.Args != nil {
			merged.Args = overlay.Prompt.Args
		}
		out.Prompt = &merged
	}

	return out
}

// mergeKeys replaces bindings with the same key sequence and appends new ones.
func mergeKeys(base, overlay []KeyBinding) []KeyBinding {
	out := append([]KeyBinding(nil), base...)
	for _, k := range overlay {
		replaced := false
		for i := range out {
			if out[i].Key == k.Key {
				out[i] = k
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, k)
		}
	}
	return out
}
