package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/default.yaml
var defaultFixture []byte

// Fixture describes data rooms to create for one user
type Fixture struct {
	Datarooms []RoomFixture `yaml:"datarooms"`
}

// RoomFixture is one data room with its tree and share links
type RoomFixture struct {
	Name string `yaml:"name"`
	// Shares lists folder paths to share. "" or "/" shares the whole room.
	Shares []string `yaml:"shares"`
	Nodes  []Entry  `yaml:"nodes"`
}

// Entry is a folder (with children) or a file (with content).
// Exactly one of Folder and File is set.
type Entry struct {
	Folder   string  `yaml:"folder,omitempty"`
	File     string  `yaml:"file,omitempty"`
	Content  string  `yaml:"content,omitempty"`
	MimeType string  `yaml:"mime_type,omitempty"`
	Children []Entry `yaml:"children,omitempty"`
}

// DefaultFixture returns the built-in sample data
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(bytes.NewReader(defaultFixture))
}

// LoadFixture reads a fixture from a YAML file
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return ParseFixture(f)
}

// ParseFixture decodes and checks a fixture. Unknown keys are rejected.
func ParseFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("fixture is empty")
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fx.validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

func (fx *Fixture) validate() error {
	if len(fx.Datarooms) == 0 {
		return errors.New("fixture has no datarooms")
	}
	for i, room := range fx.Datarooms {
		if strings.TrimSpace(room.Name) == "" {
			return fmt.Errorf("datarooms[%d]: name is required", i)
		}
		if err := validateEntries(room.Nodes, room.Name); err != nil {
			return err
		}
	}
	return nil
}

func validateEntries(entries []Entry, at string) error {
	for _, e := range entries {
		switch {
		case e.Folder != "" && e.File != "":
			return fmt.Errorf("%s: entry sets both folder %q and file %q", at, e.Folder, e.File)
		case e.Folder != "":
			if e.Content != "" {
				return fmt.Errorf("%s/%s: folders have no content", at, e.Folder)
			}
			if err := validateEntries(e.Children, at+"/"+e.Folder); err != nil {
				return err
			}
		case e.File != "":
			if len(e.Children) > 0 {
				return fmt.Errorf("%s/%s: files have no children", at, e.File)
			}
		default:
			return fmt.Errorf("%s: entry needs a folder or file name", at)
		}
	}
	return nil
}

// Count returns the number of folders and files in the fixture
func (fx *Fixture) Count() (folders, files int) {
	var walk func([]Entry)
	walk = func(entries []Entry) {
		for _, e := range entries {
			if e.Folder != "" {
				folders++
				walk(e.Children)
			} else {
				files++
			}
		}
	}
	for _, room := range fx.Datarooms {
		walk(room.Nodes)
	}
	return folders, files
}
