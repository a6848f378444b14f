package quest

import (
	"strings"
	"sync"

	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
)

// MapRegistry holds the maps quests may send the party to: those whose name
// contains the quest marker.
type MapRegistry struct {
	mu   sync.RWMutex
	mark string
	maps []hostmap.MapInfo
	byID map[int]hostmap.MapInfo
}

// NewMapRegistry creates an empty registry for the given marker.
func NewMapRegistry(mark string) *MapRegistry {
	return &MapRegistry{
		mark: mark,
		byID: make(map[int]hostmap.MapInfo),
	}
}

// LoadInfos replaces the registry with the marked maps among infos.
func (r *MapRegistry) LoadInfos(infos []hostmap.MapInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.maps = r.maps[:0]
	r.byID = make(map[int]hostmap.MapInfo)
	for _, info := range infos {
		if info.Name == "" || !strings.Contains(info.Name, r.mark) {
			continue
		}
		r.maps = append(r.maps, info)
		r.byID[info.ID] = info
	}
}

// LoadFromStore reads the map index from store.
func (r *MapRegistry) LoadFromStore(store hostmap.Store) error {
	infos, err := store.MapInfos()
	if err != nil {
		return err
	}
	r.LoadInfos(infos)
	return nil
}

// GetMap returns a registered map by id.
func (r *MapRegistry) GetMap(id int) (hostmap.MapInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.byID[id]
	return info, ok
}

// Count returns the number of quest maps.
func (r *MapRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.maps)
}

// DisplayName strips the first marker occurrence from a map name.
func (r *MapRegistry) DisplayName(name string) string {
	return strings.Replace(name, r.mark, "", 1)
}

// sample picks a quest map uniformly.
func (r *MapRegistry) sample(s *Sampler) (hostmap.MapInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.maps) == 0 {
		return hostmap.MapInfo{}, ErrNoQuestMaps
	}
	return r.maps[s.Intn(len(r.maps))], nil
}
