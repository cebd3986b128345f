package database

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"meetingroom/models"

	"gopkg.in/yaml.v3"
)

// CatalogFiles is the raw content of the catalog directory.
type CatalogFiles struct {
	// Buildings maps building name to its fixed id.
	Buildings map[string]int
	// Floors maps building id to floor number to its floor entry.
	Floors map[int]map[int]FloorEntry
}

// FloorEntry is one `[yaml floor id, {room name: yaml room id}]` pair of floor_ids.yml.
// The YAML ids repeat across buildings and are only kept for reference.
type FloorEntry struct {
	YAMLID int
	Rooms  map[string]int
}

func (f *FloorEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) != 2 {
		return fmt.Errorf("line %d: floor entry must be [floor_id, {room: id}]", value.Line)
	}
	if err := value.Content[0].Decode(&f.YAMLID); err != nil {
		return fmt.Errorf("line %d: floor id: %w", value.Line, err)
	}
	if err := value.Content[1].Decode(&f.Rooms); err != nil {
		return fmt.Errorf("line %d: rooms: %w", value.Line, err)
	}
	return nil
}

// LoadCatalogDir reads building_ids.yml and floor_ids.yml from dir.
func LoadCatalogDir(dir string) (*CatalogFiles, error) {
	var files CatalogFiles
	if err := readYAML(filepath.Join(dir, "building_ids.yml"), &files.Buildings); err != nil {
		return nil, err
	}
	if err := readYAML(filepath.Join(dir, "floor_ids.yml"), &files.Floors); err != nil {
		return nil, err
	}
	for name := range files.Buildings {
		if strings.HasPrefix(name, "#") {
			delete(files.Buildings, name)
		}
	}
	return &files, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("buildings data not found: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid catalog file %s: %w", path, err)
	}
	return nil
}

// BuildCatalog assigns global floor and room ids, both starting at 1. Buildings are
// walked by ascending id, floors by ascending number and rooms by ascending name, so the
// assignment is reproducible.
func BuildCatalog(files *CatalogFiles) (models.Catalog, error) {
	var catalog models.Catalog

	known := make(map[int]bool, len(files.Buildings))
	for name, id := range files.Buildings {
		name = strings.TrimSpace(name)
		if name == "" {
			return catalog, fmt.Errorf("building %d has an empty name", id)
		}
		if known[id] {
			return catalog, fmt.Errorf("duplicate building id %d", id)
		}
		known[id] = true
		catalog.Buildings = append(catalog.Buildings, models.Building{ID: id, Name: name})
	}
	slices.SortFunc(catalog.Buildings, func(a, b models.Building) int { return a.ID - b.ID })

	floorID, roomID := 1, 1
	for _, b := range catalog.Buildings {
		floors := files.Floors[b.ID]
		numbers := make([]int, 0, len(floors))
		for n := range floors {
			numbers = append(numbers, n)
		}
		slices.Sort(numbers)

		for _, n := range numbers {
			catalog.Floors = append(catalog.Floors, models.Floor{ID: floorID, BuildingID: b.ID, FloorNumber: n})

			names := make([]string, 0, len(floors[n].Rooms))
			for name := range floors[n].Rooms {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				catalog.Rooms = append(catalog.Rooms, models.Room{ID: roomID, FloorID: floorID, Name: name})
				roomID++
			}
			floorID++
		}
	}

	for bid := range files.Floors {
		if !known[bid] {
			return catalog, fmt.Errorf("floor_ids.yml references unknown building id %d", bid)
		}
	}
	return catalog, nil
}
