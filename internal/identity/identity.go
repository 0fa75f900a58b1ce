// Package identity produces and persists the local participant's stable
// (userId, displayName) pair across restarts. The identity is plain state
// handed to callers; nothing else in the codebase reads the backing file.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/abrezinsky/scrumdeck/internal/errors"
	"github.com/abrezinsky/scrumdeck/internal/logger"
	"github.com/abrezinsky/scrumdeck/internal/models"
)

const fileName = "identity.json"

type record struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Provider loads and stores the local identity under a state directory.
type Provider struct {
	log  logger.Logger
	path string
}

// NewProvider creates a provider storing identity under stateDir.
func NewProvider(log logger.Logger, stateDir string) *Provider {
	return &Provider{log: log, path: filepath.Join(stateDir, fileName)}
}

// Load returns the persisted identity. When no identity exists yet, a fresh
// user id is generated and persisted with the given default name. A corrupt
// identity file is regenerated; the stable user id is lost, so that path is
// logged.
func (p *Provider) Load(defaultName string) (models.User, error) {
	data, err := os.ReadFile(p.path)
	if err == nil {
		var rec record
		if jsonErr := json.Unmarshal(data, &rec); jsonErr == nil && rec.UserID != "" && rec.Name != "" {
			return models.User{ID: rec.UserID, Name: rec.Name}, nil
		}
		p.log.Warn("Identity file is corrupt, generating a fresh identity", "path", p.path)
	} else if !os.IsNotExist(err) {
		return models.User{}, err
	}

	user := models.User{ID: uuid.NewString(), Name: strings.TrimSpace(defaultName)}
	if user.Name == "" {
		return models.User{}, errors.InvalidArgument("display name must not be empty")
	}
	if err := p.save(user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Rename updates the display name, keeping the stable user id.
func (p *Provider) Rename(user models.User, name string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return user, errors.InvalidArgument("display name must not be empty")
	}
	user.Name = name
	if err := p.save(user); err != nil {
		return user, err
	}
	return user, nil
}

func (p *Provider) save(user models.User) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(record{UserID: user.ID, Name: user.Name}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}
