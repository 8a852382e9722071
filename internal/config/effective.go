package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig overlays raw on the defaults. Default key bindings are
// regenerated for the configured tags, user bindings win over them, and a
// binding to "none" removes the key.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Modifier != nil {
		cfg.Modifier = *raw.Modifier
	}
	if raw.BorderWidth != nil {
		cfg.BorderWidth = *raw.BorderWidth
	}
	if raw.BarHeight != nil {
		cfg.BarHeight = *raw.BarHeight
	}
	if raw.OverviewInset != nil {
		cfg.OverviewInset = *raw.OverviewInset
	}
	if raw.MoveDelta != nil {
		cfg.MoveDelta = *raw.MoveDelta
	}
	if raw.ExpandDelta != nil {
		cfg.ExpandDelta = *raw.ExpandDelta
	}
	if raw.FocusedBorderColor != nil {
		cfg.FocusedBorderColor = *raw.FocusedBorderColor
	}
	if raw.NormalBorderColor != nil {
		cfg.NormalBorderColor = *raw.NormalBorderColor
	}
	if raw.DragTimeout != nil {
		cfg.DragTimeout = *raw.DragTimeout
	}
	if raw.EnvFile != nil {
		cfg.EnvFile = *raw.EnvFile
	}
	if raw.Tags != nil {
		cfg.Tags = append([]TagConfig(nil), raw.Tags...)
		cfg.Keys = defaultKeys(cfg.Tags)
	}
	if raw.Keys != nil {
		cfg.Keys = mergeKeys(cfg.Keys, raw.Keys)
	}
	keys := cfg.Keys[:0]
	for _, k := range cfg.Keys {
		if k.Command != CmdNone {
			keys = append(keys, k)
		}
	}
	cfg.Keys = keys

	if raw.DefaultRules != nil && !*raw.DefaultRules {
		cfg.Rules = nil
	}
	if raw.Rules != nil {
		cfg.Rules = append(cfg.Rules, raw.Rules...)
	}
	if raw.Startup != nil {
		cfg.Startup = append([]string(nil), raw.Startup...)
	}
	if sb := raw.StatusBar; sb != nil {
		if sb.Kind != nil {
			cfg.StatusBar.Kind = *sb.Kind
		}
		if sb.Command != nil {
			cfg.StatusBar.Command = *sb.Command
		}
		if sb.Args != nil {
			cfg.StatusBar.Args = append([]string(nil), sb.Args...)
		}
		if sb.TitleLength != nil {
			cfg.StatusBar.TitleLength = *sb.TitleLength
		}
		if sb.ClientColor != nil {
			cfg.StatusBar.ClientColor = *sb.ClientColor
		}
		if sb.SelectedClientColor != nil {
			cfg.StatusBar.SelectedClientColor = *sb.SelectedClientColor
		}
		if sb.TagColor != nil {
			cfg.StatusBar.TagColor = *sb.TagColor
		}
		if sb.SelectedTagColor != nil {
			cfg.StatusBar.SelectedTagColor = *sb.SelectedTagColor
		}
	}
	if p := raw.Prompt; p != nil {
		if p.Backend != nil {
			cfg.Prompt.Backend = *p.Backend
		}
		if p.Args != nil {
			cfg.Prompt.Args = append([]string(nil), p.Args...)
		}
	}

	return cfg, nil
}
