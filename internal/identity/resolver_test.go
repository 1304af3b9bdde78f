package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingSource struct{}

func (failingSource) MainFor(context.Context, int64) (Character, error) {
	return Character{}, errors.New("ownership service unavailable")
}

func TestResolveMain(t *testing.T) {
	src := NewStaticSource()
	src.SetMain(2001, Character{ID: 1001, Name: "Main Pilot"})

	tests := []struct {
		name     string
		resolver *MainResolver
		charID   int64
		charName string
		wantID   int64
		wantName string
	}{
		{
			name:     "known alt resolves to main",
			resolver: NewMainResolver(src),
			charID:   2001,
			charName: "Alt Pilot",
			wantID:   1001,
			wantName: "Main Pilot",
		},
		{
			name:     "unknown character is its own main",
			resolver: NewMainResolver(src),
			charID:   3001,
			charName: "Solo Pilot",
			wantID:   3001,
			wantName: "Solo Pilot",
		},
		{
			name:     "source failure degrades to self",
			resolver: NewMainResolver(failingSource{}),
			charID:   2001,
			charName: "Alt Pilot",
			wantID:   2001,
			wantName: "Alt Pilot",
		},
		{
			name:     "nil source degrades to self",
			resolver: NewMainResolver(nil),
			charID:   2001,
			charName: "Alt Pilot",
			wantID:   2001,
			wantName: "Alt Pilot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, name := tt.resolver.ResolveMain(context.Background(), tt.charID, tt.charName)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestStaticSourceOverwrite(t *testing.T) {
	src := NewStaticSource()
	src.SetMain(2001, Character{ID: 1001, Name: "Old Main"})
	src.SetMain(2001, Character{ID: 1002, Name: "New Main"})

	main, err := src.MainFor(context.Background(), 2001)
	assert.NoError(t, err)
	assert.EqualValues(t, 1002, main.ID)
}
