package profile

import (
	"github.com/arthur-debert/punktf/pkg/types"
)

// Layer is one named, partially specified profile.
type Layer struct {
	Name      string            `mapstructure:"-" yaml:"name"`
	Target    string            `mapstructure:"target" yaml:"target,omitempty"`
	Variables map[string]string `mapstructure:"variables" yaml:"variables,omitempty"`
	Imports   []string          `mapstructure:"imports" yaml:"imports,omitempty"`
	Dotfiles  []types.Dotfile   `mapstructure:"dotfiles" yaml:"dotfiles,omitempty"`
	PreHooks  []string          `mapstructure:"pre_hooks" yaml:"pre_hooks,omitempty"`
	PostHooks []string          `mapstructure:"post_hooks" yaml:"post_hooks,omitempty"`
}

// TargetLayer builds a pseudo-layer that only contributes a target root,
// as used for the command-line argument and the environment fallback.
// An empty target yields a layer that contributes nothing.
func TargetLayer(name, target string) Layer {
	return Layer{Name: name, Target: target}
}

// Effective is the merged result of all layers.
type Effective struct {
	// Name is the profile that was resolved.
	Name string `json:"name" yaml:"name"`
	// Layers lists the merged layer names, highest priority first.
	Layers []string `json:"layers" yaml:"layers"`
	// Target is the deployment root; empty means undeployable.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	// TargetFrom names the layer that supplied Target.
	TargetFrom string            `json:"target_from,omitempty" yaml:"target_from,omitempty"`
	Variables  map[string]string `json:"variables" yaml:"variables"`
	Dotfiles   []types.Dotfile   `json:"dotfiles" yaml:"dotfiles"`
	PreHooks   []string          `json:"pre_hooks,omitempty" yaml:"pre_hooks,omitempty"`
	PostHooks  []string          `json:"post_hooks,omitempty" yaml:"post_hooks,omitempty"`
}

// HasTarget reports whether the profile can be deployed.
func (e *Effective) HasTarget() bool {
	return e.Target != ""
}

// Builder accumulates layers in priority order.
type Builder struct {
	layers []Layer
}

// Add appends a layer below every layer added before it.
func (b *Builder) Add(layer Layer) *Builder {
	b.layers = append(b.layers, layer)
	return b
}

// Len returns the number of layers added so far.
func (b *Builder) Len() int {
	return len(b.layers)
}

// Finish merges the layers into an Effective profile.
func (b *Builder) Finish() *Effective {
	eff := &Effective{
		Layers:    make([]string, 0, len(b.layers)),
		Variables: make(map[string]string),
		Dotfiles:  []types.Dotfile{},
	}

	for _, layer := range b.layers {
		eff.Layers = append(eff.Layers, layer.Name)

		if eff.Target == "" && layer.Target != "" {
			eff.Target = layer.Target
			eff.TargetFrom = layer.Name
		}

		for k, v := range layer.Variables {
			if _, shadowed := eff.Variables[k]; !shadowed {
				eff.Variables[k] = v
			}
		}

		for _, dotfile := range layer.Dotfiles {
			if !containsEntry(eff.Dotfiles, dotfile) {
				eff.Dotfiles = append(eff.Dotfiles, dotfile)
			}
		}

		eff.PreHooks = append(eff.PreHooks, layer.PreHooks...)
		eff.PostHooks = append(eff.PostHooks, layer.PostHooks...)
	}

	return eff
}

func containsEntry(list []types.Dotfile, d types.Dotfile) bool {
	for _, existing := range list {
		if existing.SameEntry(d) {
			return true
		}
	}
	return false
}
