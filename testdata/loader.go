package testdata

import (
	"embed"
	"fmt"
	"os"
)

//go:embed data-files
var dataFilesRoot embed.FS

const dataBasePath = "data-files"

// Load returns the embedded default fixture set. Each file under data-files holds one
// top-level section; they are parsed into a single TestData.
func Load() (TestData, error) {
	var out TestData
	files, err := dataFilesRoot.ReadDir(dataBasePath)
	if err != nil {
		return TestData{}, err
	}
	for _, file := range files {
		data, err := dataFilesRoot.ReadFile(dataBasePath + "/" + file.Name())
		if err != nil {
			return TestData{}, fmt.Errorf("failed to read %q: %w", file.Name(), err)
		}
		if err := ParseJSONOrYAML(data, &out); err != nil {
			return TestData{}, fmt.Errorf("error parsing %q: %w", file.Name(), err)
		}
	}
	return out, nil
}

// LoadFile reads a fixture file (JSON or YAML) and merges it over the embedded
// defaults. Only the values present in the file are overridden.
func LoadFile(path string) (TestData, error) {
	out, err := Load()
	if err != nil {
		return TestData{}, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the -data flag
	if err != nil {
		return TestData{}, fmt.Errorf("failed to read %q: %w", path, err)
	}
	if err := ParseJSONOrYAML(data, &out); err != nil {
		return TestData{}, fmt.Errorf("error parsing %q: %w", path, err)
	}
	return out, nil
}
