// Package media locates and presents received attachment files.
//
// signal-cli writes attachment payloads into its own store keyed by
// attachment id; this package maps entries back to those files, waits for
// late-arriving payloads, and renders transcript placeholders.
package media

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"sigtui/internal/conv"
	"sigtui/internal/logging"
)

// Store resolves attachments against signal-cli's attachment directory.
type Store struct {
	dir string
}

// NewStore builds a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the attachment directory.
func (s *Store) Dir() string {
	return s.dir
}

// Locate returns the on-disk path for an attachment, preferring the path
// signal-cli reported in the envelope over the id-derived one. The second
// return is false when no file exists yet.
func (s *Store) Locate(att conv.Attachment) (string, bool) {
	candidates := make([]string, 0, 2)
	if att.LocalPath != "" {
		candidates = append(candidates, att.LocalPath)
	}
	if att.ID != "" && s.dir != "" {
		candidates = append(candidates, filepath.Join(s.dir, att.ID))
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Reveal opens a file with the desktop's default handler. Fire-and-forget:
// the command runs detached and failures only hit the log.
func Reveal(path string) {
	opener, err := exec.LookPath("xdg-open")
	if err != nil {
		logging.Get(logging.CategoryMedia).Warn("no xdg-open on PATH, cannot reveal %s", path)
		return
	}
	go func() {
		if err := exec.Command(opener, path).Run(); err != nil {
			logging.Get(logging.CategoryMedia).Warn("reveal %s: %v", path, err)
		}
	}()
}

// Label renders a transcript placeholder for one attachment.
func Label(att conv.Attachment) string {
	name := att.Filename
	if name == "" {
		name = att.ID
	}
	kind := kindOf(att.ContentType)
	if name == "" {
		return fmt.Sprintf("[%s]", kind)
	}
	return fmt.Sprintf("[%s: %s]", kind, name)
}

// StickerLabel renders a transcript placeholder for a sticker, using its
// emoji when the pack supplied one.
func StickerLabel(st conv.Sticker) string {
	if st.Emoji != "" {
		return fmt.Sprintf("[sticker %s]", st.Emoji)
	}
	return "[sticker]"
}

func kindOf(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	default:
		return "file"
	}
}
