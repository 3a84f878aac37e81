package config

// Presets maps kernel name to named ready-to-run problem configurations.
var Presets = map[string]map[string]*Config{
	"heat": {
		"spike": {
			Name: "heat", Kernel: "heat", Alpha: 0.25, Steps: 200,
			Extents: [][2]int{{0, 199}}, Boundaries: []string{"zero"},
			Strategy: "tiled", Tile: []int{25},
			Initial: InitialConfig{Kind: "impulse", Value: 1.0},
		},
		"gaussian": {
			Name: "heat", Kernel: "heat", Alpha: 0.2, Steps: 500,
			Extents: [][2]int{{0, 499}}, Boundaries: []string{"edge"},
			Strategy: "tiled", Tile: []int{50},
			Initial: InitialConfig{Kind: "gaussian", Value: 1.0, Sigma: 20},
		},
		"ring": {
			Name: "heat", Kernel: "heat", Alpha: 0.25, Steps: 300,
			Extents: [][2]int{{0, 255}}, Boundaries: []string{"periodic"},
			Strategy: "tiled", Tile: []int{32},
			Initial: InitialConfig{Kind: "impulse", Value: 1.0},
		},
		"plate": {
			Name: "heat", Kernel: "heat", Alpha: 0.1, Steps: 100,
			Extents: [][2]int{{0, 63}, {0, 63}}, Boundaries: []string{"zero", "zero"},
			Strategy: "tiled", Tile: []int{16, 16},
			Initial: InitialConfig{Kind: "gaussian", Value: 1.0, Sigma: 6},
		},
	},
	"blur": {
		"smooth": {
			Name: "blur", Kernel: "blur", Steps: 10,
			Extents: [][2]int{{0, 127}}, Boundaries: []string{"edge"},
			Strategy: "tiled", Tile: []int{32},
			Initial: InitialConfig{Kind: "impulse", Value: 1.0},
		},
		"image": {
			Name: "blur", Kernel: "blur", Steps: 3,
			Extents: [][2]int{{0, 63}, {0, 63}}, Boundaries: []string{"edge", "edge"},
			Strategy: "tiled", Tile: []int{16, 16},
			Initial: InitialConfig{Kind: "gaussian", Value: 1.0, Sigma: 8},
		},
	},
	"identity": {
		"hold": {
			Name: "identity", Kernel: "identity", Steps: 50,
			Extents: [][2]int{{0, 99}}, Boundaries: []string{"periodic"},
			Strategy: "direct",
			Initial:  InitialConfig{Kind: "gaussian", Value: 1.0},
		},
	},
}

// GetPreset returns the named preset for a kernel, or nil.
func GetPreset(kernel, name string) *Config {
	kernelPresets, ok := Presets[kernel]
	if !ok {
		return nil
	}
	return kernelPresets[name]
}

// ListPresets returns preset names for a kernel, or nil.
func ListPresets(kernel string) []string {
	kernelPresets, ok := Presets[kernel]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kernelPresets))
	for name := range kernelPresets {
		names = append(names, name)
	}
	return names
}
