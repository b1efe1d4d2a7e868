package corridor

import "encoding/json"

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Lines decodes the geometry into one or more coordinate parts of [lng, lat]
// pairs. A LineString yields one part, a MultiLineString one per member in
// source order. Unsupported geometry types yield nil.
func (g Geometry) Lines() [][][2]float64 {
	switch g.Type {
	case "LineString":
		var line [][2]float64
		if err := json.Unmarshal(g.Coordinates, &line); err != nil {
			return nil
		}
		return [][][2]float64{line}
	case "MultiLineString":
		var lines [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &lines); err != nil {
			return nil
		}
		return lines
	default:
		return nil
	}
}
