package config

var Presets = map[string]map[string]*Config{
	"powerinjection": {
		"default": {
			Model: "powerinjection", EndTime: 10000, InitialDt: 10, MinDt: 0.1, MaxDt: 500, MaxDivisions: 10,
			Grid: GridConfig{Length: 100, Cells: 250},
		},
		"coarse": {
			Model: "powerinjection", EndTime: 10000, InitialDt: 50, MinDt: 1, MaxDt: 1000, MaxDivisions: 8,
			Grid: GridConfig{Length: 100, Cells: 50},
		},
		"stress": {
			Model: "powerinjection", EndTime: 5000, InitialDt: 500, MinDt: 0.01, MaxDt: 500, MaxDivisions: 15,
			Grid: GridConfig{Length: 100, Cells: 250},
		},
	},
	"heat": {
		"default": {
			Model: "heat", EndTime: 86400, InitialDt: 60, MinDt: 1, MaxDt: 3600, MaxDivisions: 10,
			Grid: GridConfig{Length: 10, Cells: 100},
		},
		"episodic": {
			Model: "heat", EndTime: 86400, InitialDt: 60, MinDt: 1, MaxDt: 3600, MaxDivisions: 10,
			EpisodeLength: 21600,
			Grid:          GridConfig{Length: 10, Cells: 100},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
