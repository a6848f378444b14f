package hostmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrMapNotFound is returned when a map id has no data.
var ErrMapNotFound = errors.New("map not found")

// Store loads and saves host maps by id.
type Store interface {
	LoadMap(id int) (*MapData, error)
	SaveMap(id int, m *MapData) error
	MapInfos() ([]MapInfo, error)
}

// FileStore reads a host data directory (MapInfos.json, Map001.json, ...).
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) mapPath(id int) string {
	return filepath.Join(s.dir, fmt.Sprintf("Map%03d.json", id))
}

func (s *FileStore) LoadMap(id int) (*MapData, error) {
	data, err := os.ReadFile(s.mapPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("map %d: %w", id, ErrMapNotFound)
		}
		return nil, fmt.Errorf("failed to read map %d: %w", id, err)
	}
	var m MapData
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse map %d: %w", id, err)
	}
	return &m, nil
}

func (s *FileStore) SaveMap(id int, m *MapData) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode map %d: %w", id, err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(s.mapPath(id), data, 0644); err != nil {
		return fmt.Errorf("failed to write map %d: %w", id, err)
	}
	return nil
}

// MapInfos returns the non-null entries of MapInfos.json.
func (s *FileStore) MapInfos() ([]MapInfo, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, "MapInfos.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read map infos: %w", err)
	}
	var raw []*MapInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse map infos: %w", err)
	}
	infos := make([]MapInfo, 0, len(raw))
	for _, info := range raw {
		if info != nil {
			infos = append(infos, *info)
		}
	}
	return infos, nil
}

// MemoryStore keeps maps in memory. The bridge uses it for maps pushed by the
// host; tests use it as a fake.
type MemoryStore struct {
	mu    sync.RWMutex
	maps  map[int]*MapData
	infos []MapInfo
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{maps: make(map[int]*MapData)}
}

func (s *MemoryStore) LoadMap(id int) (*MapData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.maps[id]
	if !ok {
		return nil, fmt.Errorf("map %d: %w", id, ErrMapNotFound)
	}
	return m.Clone(), nil
}

func (s *MemoryStore) SaveMap(id int, m *MapData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.maps[id] = m.Clone()
	return nil
}

func (s *MemoryStore) MapInfos() ([]MapInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]MapInfo(nil), s.infos...), nil
}

// SetMapInfos replaces the map index.
func (s *MemoryStore) SetMapInfos(infos []MapInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.infos = append([]MapInfo(nil), infos...)
}
