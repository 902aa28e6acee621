package preferences

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemBlobs() *memBlobs { return &memBlobs{data: map[string][]byte{}} }

func (m *memBlobs) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memBlobs) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestStore_LoadMergesOverDefaults(t *testing.T) {
	blobs := newMemBlobs()
	blobs.data["prefs"] = []byte(`{"theme":"dark","large_text":true,"font_scale":2}`)
	s := NewStore(blobs, zap.NewNop())

	got := s.Load("prefs")
	assert.Equal(t, Preferences{Theme: ThemeDark, Locale: "en", LargeText: true}, got)
}

func TestStore_LoadFallsBackToDefaults(t *testing.T) {
	blobs := newMemBlobs()
	s := NewStore(blobs, zap.NewNop())

	assert.Equal(t, Defaults(), s.Load("missing"))

	blobs.data["broken"] = []byte(`{"theme":`)
	assert.Equal(t, Defaults(), s.Load("broken"))

	blobs.data["invalid"] = []byte(`{"theme":"neon"}`)
	assert.Equal(t, Defaults(), s.Load("invalid"))

	blobs.err = errors.New("disk gone")
	assert.Equal(t, Defaults(), s.Load("missing"))
}

func TestStore_SaveRoundTrip(t *testing.T) {
	s := NewStore(newMemBlobs(), zap.NewNop())
	want := Preferences{Theme: ThemeLight, Locale: "hi", ReduceMotion: true, HighContrast: true}

	require.NoError(t, s.Save("prefs", want))
	assert.Equal(t, want, s.Load("prefs"))
	assert.Error(t, s.Save("prefs", Preferences{Theme: "neon", Locale: "en"}))
}
