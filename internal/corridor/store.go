package corridor

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Store holds the corridor geometries loaded from the road-network GeoJSON,
// indexed by corridor id. Geometries are immutable once loaded.
type Store struct {
	features map[string]Feature
}

// idProperties are tried in order when indexing a feature.
var idProperties = []string{"LINK_ID", "ROUTE_ID", "id"}

func NewStore(features []Feature) *Store {
	s := &Store{features: map[string]Feature{}}
	for _, f := range features {
		if id := featureID(f); id != "" {
			s.features[id] = f
		}
	}
	return s
}

// LoadStore reads a GeoJSON feature collection from disk.
func LoadStore(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corridors: %w", err)
	}
	var fc FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse corridors: %w", err)
	}
	return NewStore(fc.Features), nil
}

// Geometry returns the geometry for a corridor id, if known.
func (s *Store) Geometry(id string) (Geometry, bool) {
	f, ok := s.features[id]
	if !ok {
		return Geometry{}, false
	}
	return f.Geometry, true
}

func (s *Store) Len() int {
	return len(s.features)
}

// featureID extracts the corridor id. Road-network exports carry ids as
// either strings or numbers.
func featureID(f Feature) string {
	for _, key := range idProperties {
		switch v := f.Properties[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
