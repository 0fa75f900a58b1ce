package identity_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abrezinsky/scrumdeck/internal/errors"
	"github.com/abrezinsky/scrumdeck/internal/identity"
	"github.com/abrezinsky/scrumdeck/internal/logger"
)

// warnRecorder captures Warn calls, delegating everything else.
type warnRecorder struct {
	logger.Logger
	warnings []string
}

func (w *warnRecorder) Warn(msg string, args ...any) {
	w.warnings = append(w.warnings, msg)
}

func newProvider(dir string) *identity.Provider {
	return identity.NewProvider(logger.New(), dir)
}

func TestLoad_GeneratesAndPersistsIdentity(t *testing.T) {
	dir := t.TempDir()
	p := newProvider(dir)

	user, err := p.Load("Ann")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if user.ID == "" || user.Name != "Ann" {
		t.Fatalf("unexpected identity: %+v", user)
	}

	again, err := newProvider(dir).Load("Other")
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if again.ID != user.ID || again.Name != "Ann" {
		t.Errorf("expected persisted identity %+v, got %+v", user, again)
	}
}

func TestLoad_EmptyDefaultNameFails(t *testing.T) {
	p := newProvider(t.TempDir())

	if _, err := p.Load("  "); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}

func TestLoad_CorruptFileRegeneratesAndWarns(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "identity.json"), []byte("{garbage"), 0o644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	rec := &warnRecorder{Logger: logger.New()}
	user, err := identity.NewProvider(rec, dir).Load("Ann")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if user.ID == "" || user.Name != "Ann" {
		t.Errorf("expected regenerated identity, got %+v", user)
	}
	if len(rec.warnings) != 1 {
		t.Errorf("expected one warning about the corrupt file, got %v", rec.warnings)
	}
}

func TestLoad_ValidFileDoesNotWarn(t *testing.T) {
	dir := t.TempDir()
	rec := &warnRecorder{Logger: logger.New()}
	p := identity.NewProvider(rec, dir)

	if _, err := p.Load("Ann"); err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	if _, err := p.Load("Ann"); err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if len(rec.warnings) != 0 {
		t.Errorf("expected no warnings, got %v", rec.warnings)
	}
}

func TestRename_KeepsUserID(t *testing.T) {
	dir := t.TempDir()
	p := newProvider(dir)

	user, err := p.Load("Ann")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	renamed, err := p.Rename(user, "Annika")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.ID != user.ID || renamed.Name != "Annika" {
		t.Errorf("unexpected identity after rename: %+v", renamed)
	}

	reloaded, err := newProvider(dir).Load("ignored")
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.ID != user.ID || reloaded.Name != "Annika" {
		t.Errorf("expected rename persisted, got %+v", reloaded)
	}
}

func TestRename_EmptyNameRejected(t *testing.T) {
	p := newProvider(t.TempDir())

	user, err := p.Load("Ann")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := p.Rename(user, " "); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}
