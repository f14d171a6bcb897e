package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigtui/internal/conv"
)

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	t.Run("missing file", func(t *testing.T) {
		_, ok := store.Locate(conv.Attachment{ID: "nope"})
		assert.False(t, ok)
	})

	t.Run("by id", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "att-1"), []byte("x"), 0o644))
		path, ok := store.Locate(conv.Attachment{ID: "att-1"})
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "att-1"), path)
	})

	t.Run("reported path preferred", func(t *testing.T) {
		local := filepath.Join(t.TempDir(), "photo.jpg")
		require.NoError(t, os.WriteFile(local, []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "att-2"), []byte("x"), 0o644))

		path, ok := store.Locate(conv.Attachment{ID: "att-2", LocalPath: local})
		require.True(t, ok)
		assert.Equal(t, local, path)
	})
}

func TestWaitFor_AlreadyPresent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "att"), []byte("x"), 0o644))

	path, err := NewStore(dir).WaitFor(context.Background(), conv.Attachment{ID: "att"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "att"), path)
}

func TestWaitFor_CreatedLater(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(filepath.Join(dir, "late"), []byte("payload"), 0o644)
	}()

	path, err := store.WaitFor(context.Background(), conv.Attachment{ID: "late"}, 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "late"), path)
}

func TestWaitFor_Timeout(t *testing.T) {
	_, err := NewStore(t.TempDir()).WaitFor(context.Background(), conv.Attachment{ID: "never"}, 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not materialized")
}

func TestLabels(t *testing.T) {
	tests := []struct {
		name string
		att  conv.Attachment
		want string
	}{
		{"image with filename", conv.Attachment{ContentType: "image/png", Filename: "cat.png"}, "[image: cat.png]"},
		{"video by id", conv.Attachment{ContentType: "video/mp4", ID: "v1"}, "[video: v1]"},
		{"audio", conv.Attachment{ContentType: "audio/ogg", Filename: "note.ogg"}, "[audio: note.ogg]"},
		{"unknown type", conv.Attachment{ContentType: "application/pdf", Filename: "doc.pdf"}, "[file: doc.pdf]"},
		{"nothing to name", conv.Attachment{ContentType: "image/png"}, "[image]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.att))
		})
	}

	assert.Equal(t, "[sticker 🦊]", StickerLabel(conv.Sticker{Emoji: "🦊"}))
	assert.Equal(t, "[sticker]", StickerLabel(conv.Sticker{}))
}
