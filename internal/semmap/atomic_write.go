package semmap

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces target with data by writing a temporary file in the
// same directory and renaming it over target. A reader sees either the old
// content or the new content. An existing target keeps its permissions.
func WriteFileAtomic(target string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", target, err)
	}
	return nil
}

// WriteDocument encodes doc with the codec matching target's extension and writes it atomically.
func WriteDocument(target string, doc *Document) error {
	data, err := CodecForPath(target).Encode(doc)
	if err != nil {
		return err
	}
	return WriteFileAtomic(target, data)
}

// ReadDocument reads and decodes the document at p, choosing the codec by extension.
// A missing file yields an error wrapping ErrNoDocument.
func ReadDocument(p string) (*Document, []byte, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNoDocument, p)
		}
		return nil, nil, fmt.Errorf("read %s: %w", p, err)
	}
	doc, err := CodecForPath(p).Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", p, err)
	}
	return doc, data, nil
}
