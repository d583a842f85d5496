package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
)

const snapshotVersion = 1

type snapshot struct {
	Version int               `json:"version"`
	Entries map[string][]byte `json:"entries"`
}

// FileBackend keeps every key in memory and rewrites one compressed snapshot
// file per Apply. The write goes to a temp file that is synced and renamed
// over the previous snapshot, so a crash leaves either the old or new state.
type FileBackend struct {
	mu         sync.RWMutex
	path       string
	data       map[string][]byte
	compressor CompressorInterface
	closed     bool
}

func NewFileBackend(path string, compressor CompressorInterface) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	f := &FileBackend{
		path:       path,
		data:       make(map[string][]byte),
		compressor: compressor,
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FileBackend) load() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := f.compressor.Decompress(raw)
	if err != nil {
		return fmt.Errorf("decompress snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(decompressed, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > snapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, snapshotVersion)
	}
	if snap.Entries != nil {
		f.data = snap.Entries
	}
	return nil
}

func (f *FileBackend) Get(key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil, false, ErrClosed
	}
	val, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), val...), true, nil
}

func (f *FileBackend) Set(key string, value []byte) error {
	return f.Apply(Set(key, value))
}

func (f *FileBackend) Remove(key string) error {
	return f.Apply(Remove(key))
}

func (f *FileBackend) Apply(ops ...Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	next := make(map[string][]byte, len(f.data)+len(ops))
	for k, v := range f.data {
		next[k] = v
	}
	applyOps(next, ops)

	if err := f.writeSnapshot(next); err != nil {
		return err
	}
	f.data = next
	return nil
}

func (f *FileBackend) writeSnapshot(entries map[string][]byte) error {
	jsonData, err := json.Marshal(snapshot{Version: snapshotVersion, Entries: entries})
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := f.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, f.path)
}

func (f *FileBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		f.compressor.Close()
	}
	return nil
}
