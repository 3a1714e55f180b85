package modules

import (
	"context"
	"testing"

	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/errs"
)

type stubModule struct{ ran bool }

func (m *stubModule) Run(ctx context.Context, sc *SyncContext) error {
	m.ran = true
	return nil
}

func TestRegistryBuildUsesRegisteredFactory(t *testing.T) {
	r := NewRegistry()
	var built *stubModule
	r.Register("playlist_mirror", func(cfg config.SyncConfig) (Module, error) {
		built = &stubModule{}
		return built, nil
	})

	mod, err := r.Build(config.SyncConfig{ID: "mirror-1", Type: "playlist_mirror"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := mod.Run(context.Background(), &SyncContext{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !built.ran {
		t.Fatal("expected module to run")
	}
}

func TestRegistryBuildMissingType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build(config.SyncConfig{ID: "x", Type: "unknown_type"})
	if err == nil {
		t.Fatal("expected error for unregistered type")
	}
	e, ok := errs.As(err)
	if !ok || e.Kind != errs.ModuleMissing {
		t.Fatalf("expected ModuleMissing error, got %v", err)
	}
}
