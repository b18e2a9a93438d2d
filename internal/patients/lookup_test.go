package patients

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPrefersPrimary(t *testing.T) {
	primary := &countingStore{profile: &Profile{Forename: strPtr("Jana")}}
	l := NewLookup(primary, DemoStore(), 0, nil)

	p := l.Find(context.Background(), "+421 903 123 456")
	require.NotNil(t, p)
	assert.Equal(t, "Jana", p.FullName())
}

func TestLookupFallsBackOnMissAndError(t *testing.T) {
	for name, primary := range map[string]*countingStore{
		"miss":  {},
		"error": {err: errors.New("timeout")},
	} {
		t.Run(name, func(t *testing.T) {
			l := NewLookup(primary, DemoStore(), 0, nil)
			p := l.Find(context.Background(), "+421903123456")
			require.NotNil(t, p)
			assert.Equal(t, "Milan Majtán", p.FullName())
			assert.Equal(t, 1, primary.calls)
		})
	}
}

func TestLookupUnknownCaller(t *testing.T) {
	l := NewLookup(nil, DemoStore(), 0, nil)
	assert.Nil(t, l.Find(context.Background(), "+44 20 0000 0000"))
	assert.Nil(t, l.Find(context.Background(), "  "))
}
