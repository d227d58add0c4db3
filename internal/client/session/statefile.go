package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vkotlyarov/skillboard/internal/models"
)

// stateFile persists the cached identity and both tokens between runs,
// so the next start can show who is logged in before the network answers
type stateFile struct {
	path string
}

type persistedState struct {
	User         models.Public `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

// Load reads the cached state. A missing file is not an error:
// it simply means nobody is logged in
func (f *stateFile) Load() (persistedState, bool, error) {
	var state persistedState

	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return state, false, nil
	case err != nil:
		return state, false, fmt.Errorf("read state file error: %w", err)
	}

	if err := json.Unmarshal(data, &state); err != nil {
		// Corrupt cache is treated as no cache
		return persistedState{}, false, nil
	}

	return state, true, nil
}

// Save writes the state with owner-only permissions, tokens are secrets
func (f *stateFile) Save(state persistedState) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create state dir error: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state error: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write state file error: %w", err)
	}

	return nil
}

// Clear removes the cached state. Removing an absent file succeeds
func (f *stateFile) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove state file error: %w", err)
	}

	return nil
}
