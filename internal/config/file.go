package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileSettings struct {
	RenderDistance *int     `yaml:"renderDistance"`
	LODFactor      *float64 `yaml:"lodFactor"`
	HighestLOD     *int     `yaml:"highestLOD"`
	Bloom          *bool    `yaml:"bloom"`
	FOV            *float64 `yaml:"fov"`
	VSync          *bool    `yaml:"vsync"`
	ServerURL      string   `yaml:"serverURL"`
	Seed           int64    `yaml:"seed"`
}

var fileExtras fileSettings

// Load reads a YAML settings file and applies every present field through
// the clamped setters. Missing fields keep their defaults.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fs fileSettings
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if fs.RenderDistance != nil {
		SetRenderDistance(*fs.RenderDistance)
	}
	if fs.LODFactor != nil {
		SetLODFactor(*fs.LODFactor)
	}
	if fs.HighestLOD != nil {
		SetHighestLOD(*fs.HighestLOD)
	}
	if fs.Bloom != nil {
		SetBloom(*fs.Bloom)
	}
	if fs.FOV != nil {
		SetFOV(*fs.FOV)
	}
	if fs.VSync != nil {
		SetVSync(*fs.VSync)
	}
	fileExtras = fs
	return nil
}

// GetServerURL returns the chunk server address, empty for local mode.
func GetServerURL() string {
	return fileExtras.ServerURL
}

// GetSeed returns the local-generation seed.
func GetSeed() int64 {
	return fileExtras.Seed
}
