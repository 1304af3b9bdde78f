// Package identity resolves characters to the main character that
// controls them, so one human receives exactly one payout no matter
// how many alts they flew.
package identity

import (
	"context"
	"log/slog"
	"sync"
)

// Character is a minimal character reference.
type Character struct {
	ID   int64
	Name string
}

// Resolver maps a character to its main. A Resolver never fails: on any
// internal problem it degrades to the input character.
type Resolver interface {
	ResolveMain(ctx context.Context, characterID int64, characterName string) (int64, string)
}

// OwnershipSource is the external system of record for character
// ownership (which human owns which character).
type OwnershipSource interface {
	// MainFor returns the main character owning characterID.
	// A zero-ID result means ownership is unknown.
	MainFor(ctx context.Context, characterID int64) (Character, error)
}

// MainResolver resolves mains through an OwnershipSource, degrading to
// self-identity whenever the source fails or knows nothing.
type MainResolver struct {
	src OwnershipSource
}

var _ Resolver = (*MainResolver)(nil)

// NewMainResolver creates a resolver over src. A nil src yields a
// resolver that always returns the input character.
func NewMainResolver(src OwnershipSource) *MainResolver {
	return &MainResolver{src: src}
}

func (r *MainResolver) ResolveMain(ctx context.Context, characterID int64, characterName string) (int64, string) {
	if r == nil || r.src == nil {
		return characterID, characterName
	}

	main, err := r.src.MainFor(ctx, characterID)
	if err != nil {
		slog.Warn("main character resolution failed, using character as its own main",
			"character_id", characterID,
			"character_name", characterName,
			"error", err,
		)
		return characterID, characterName
	}
	if main.ID == 0 {
		slog.Debug("no ownership record, using character as its own main",
			"character_id", characterID,
			"character_name", characterName,
		)
		return characterID, characterName
	}
	return main.ID, main.Name
}

// StaticSource is an in-memory OwnershipSource, useful for tests and
// for deployments that sync ownership from an external auth system.
type StaticSource struct {
	mu    sync.RWMutex
	mains map[int64]Character
}

var _ OwnershipSource = (*StaticSource)(nil)

func NewStaticSource() *StaticSource {
	return &StaticSource{mains: make(map[int64]Character)}
}

// SetMain records that characterID is controlled by main.
func (s *StaticSource) SetMain(characterID int64, main Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mains[characterID] = main
}

func (s *StaticSource) MainFor(_ context.Context, characterID int64) (Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mains[characterID], nil
}
