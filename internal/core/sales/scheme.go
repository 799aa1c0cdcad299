package sales

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// rawScheme is the on-disk YAML shape of a bonus scheme.
// Rates are strings so they are parsed as exact decimals.
type rawScheme struct {
	Name                string         `yaml:"name"`
	Rates               map[int]string `yaml:"rates"`
	DefaultRate         string         `yaml:"default_rate"`
	LastRankGetsNothing *bool          `yaml:"last_rank_gets_nothing"` // defaults to true
}

// SchemeRepository looks up bonus schemes by name.
type SchemeRepository interface {
	// Get returns the scheme with the given name, or ErrSchemeNotFound.
	Get(ctx context.Context, name string) (*BonusScheme, error)

	// List returns all schemes sorted by name.
	List(ctx context.Context) ([]BonusScheme, error)
}

// FileSystemSchemeRepository serves the built-in scheme plus schemes loaded
// from *.yaml files in a directory, one scheme per file. A file may replace
// the built-in scheme by reusing its name. Files are read once at construction.
type FileSystemSchemeRepository struct {
	dir     string
	schemes map[string]BonusScheme
}

// NewFileSystemSchemeRepository eagerly loads all schemes from dir. An empty
// dir, or one that does not exist, yields only the built-in scheme.
func NewFileSystemSchemeRepository(dir string) (*FileSystemSchemeRepository, error) {
	repo := &FileSystemSchemeRepository{
		dir: dir,
		schemes: map[string]BonusScheme{
			DefaultBonusScheme.Name: DefaultBonusScheme,
		},
	}
	if dir == "" {
		return repo, nil
	}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileSystemSchemeRepository) load() error {
	paths, err := schemeFiles(r.dir)
	if err != nil {
		return err
	}

	origin := make(map[string]string, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("bonus scheme %s: %w", path, err)
		}
		scheme, err := parseScheme(data)
		if err != nil {
			return fmt.Errorf("parsing scheme file %s: %w", path, err)
		}
		if scheme == nil {
			continue
		}

		if first, seen := origin[scheme.Name]; seen {
			return fmt.Errorf("duplicate scheme name %q in %s and %s", scheme.Name, filepath.Base(first), filepath.Base(path))
		}
		origin[scheme.Name] = path
		r.schemes[scheme.Name] = *scheme
	}
	return nil
}

// schemeFiles lists the YAML files directly under dir in name order.
// A missing dir holds no files.
func schemeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
			return nil, fmt.Errorf("bonus scheme path %q is not a directory", dir)
		}
		return nil, fmt.Errorf("bonus scheme dir %q: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

func parseScheme(data []byte) (*BonusScheme, error) {
	var raw rawScheme
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Name == "" {
		return nil, nil
	}

	scheme := BonusScheme{
		Name:                raw.Name,
		Rates:               make(map[int]decimal.Decimal, len(raw.Rates)),
		Default:             decimal.Zero,
		LastRankGetsNothing: true,
		Fingerprint:         fmt.Sprintf("%x", sha256.Sum256(data)),
	}
	if raw.LastRankGetsNothing != nil {
		scheme.LastRankGetsNothing = *raw.LastRankGetsNothing
	}
	if raw.DefaultRate != "" {
		d, err := decimal.NewFromString(raw.DefaultRate)
		if err != nil {
			return nil, fmt.Errorf("scheme %q: default_rate %q: %w", raw.Name, raw.DefaultRate, err)
		}
		scheme.Default = d
	}
	for rank, value := range raw.Rates {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("scheme %q: rate for rank %d %q: %w", raw.Name, rank, value, err)
		}
		scheme.Rates[rank] = d
	}

	if err := scheme.Validate(); err != nil {
		return nil, err
	}
	return &scheme, nil
}

// Get returns the scheme with the given name.
func (r *FileSystemSchemeRepository) Get(_ context.Context, name string) (*BonusScheme, error) {
	scheme, ok := r.schemes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSchemeNotFound, name)
	}
	return &scheme, nil
}

// List returns all schemes sorted by name.
func (r *FileSystemSchemeRepository) List(_ context.Context) ([]BonusScheme, error) {
	out := make([]BonusScheme, 0, len(r.schemes))
	for _, s := range r.schemes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
