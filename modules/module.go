// Package modules defines the contract every sync job implements (C7) and
// the type-name-keyed registry the Supervisor uses to instantiate them
// (C3).
package modules

import (
	"context"

	"github.com/goccy/go-yaml"

	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/errs"
	"github.com/spotifreak/spotifreak/l3"
	"github.com/spotifreak/spotifreak/managers"
	"github.com/spotifreak/spotifreak/sharedcache"
	"github.com/spotifreak/spotifreak/spotify"
	"github.com/spotifreak/spotifreak/state"
)

// SyncContext is the runtime context handed to a module on every run. A new
// SyncContext is built per fire; Spotify/SharedCache are shared
// collaborators, State is the module's own per-job store.
type SyncContext struct {
	Logger      l3.Logger
	Spotify     *spotify.Client
	State       *state.State
	GlobalConfig *config.GlobalConfig
	Paths       config.ConfigPaths
	SharedCache *sharedcache.Cache
}

// Module is implemented by every sync job type. Run executes the module's
// logic once; it must be safe to call repeatedly and must respect ctx
// cancellation for any blocking remote call.
type Module interface {
	Run(ctx context.Context, sc *SyncContext) error
}

// Factory builds a Module instance from its job configuration.
type Factory func(cfg config.SyncConfig) (Module, error)

// Registry maps a sync job's "type" field to the Factory that builds it.
type Registry struct {
	items managers.ItemManager[Factory]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: managers.NewItemManager[Factory]()}
}

// Register associates typeName with factory. Re-registering a type name
// replaces the previous factory, matching managers.ItemManager's semantics.
func (r *Registry) Register(typeName string, factory Factory) {
	r.items.Register(typeName, factory)
}

// Get looks up the factory for typeName. ok is false when no module of that
// type has been registered, which the Supervisor surfaces as a
// ModuleMissing error.
func (r *Registry) Get(typeName string) (Factory, bool) {
	factory := r.items.Get(typeName)
	return factory, factory != nil
}

// Build instantiates the module configured by cfg, looking up its factory
// by cfg.Type.
func (r *Registry) Build(cfg config.SyncConfig) (Module, error) {
	factory, ok := r.Get(cfg.Type)
	if !ok {
		return nil, moduleMissingError(cfg.Type)
	}
	return factory(cfg)
}

// DecodeOptions re-marshals a sync job's generic Options map into a
// strongly typed struct, using the same YAML round-trip every module's
// options decoding is grounded on (config's loader already decodes the
// whole document with goccy/go-yaml; this applies the same library to the
// per-module options sub-document).
func DecodeOptions(raw map[string]any, out any) error {
	buf, err := yaml.Marshal(raw)
	if err != nil {
		return errs.Newf(errs.OptionsInvalid, "re-encoding module options: %v", err)
	}
	if err := yaml.Unmarshal(buf, out); err != nil {
		return errs.Newf(errs.OptionsInvalid, "decoding module options: %v", err)
	}
	return nil
}
