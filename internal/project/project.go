package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AndreyAkinshin/fieldcheck/internal/config"
	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
)

// Project represents a loaded fieldcheck suite.
type Project struct {
	Root     string
	Config   *config.Config
	Warnings []string
	// Discovered is true when the cases were found on disk rather than
	// listed in the configuration.
	Discovered bool
}

// LoadProject finds and loads a suite from the current directory.
func LoadProject() (*Project, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return LoadProjectFrom(root)
}

// LoadProjectFrom loads a suite from a specified root directory. When the
// configuration lists no cases, export directories under the root are
// discovered instead.
func LoadProjectFrom(root string) (*Project, error) {
	configPath := filepath.Join(root, ConfigDirName, ConfigFileName)

	cfg, warnings, err := config.LoadAndValidate(configPath)
	if err != nil {
		if ferrors.Is(err, ferrors.KindConfig) {
			return nil, err
		}
		return nil, &ferrors.Error{
			Kind:    ferrors.KindConfig,
			Message: fmt.Sprintf("failed to load configuration: %v", err),
			Cause:   err,
		}
	}

	p := &Project{Root: root, Config: cfg, Warnings: warnings}
	if len(cfg.Cases) == 0 {
		cases, err := DiscoverCases(root)
		if err != nil {
			return nil, fmt.Errorf("failed to discover cases: %w", err)
		}
		cfg.Cases = cases
		p.Discovered = len(cases) > 0
	}
	return p, nil
}

// ConfigPath returns the full path to the suite configuration file.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.Root, ConfigDirName, ConfigFileName)
}

// Path resolves a configuration path against the suite root. Absolute
// paths are returned unchanged.
func (p *Project) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}

// CaseDirectory returns the absolute export directory of a case.
func (p *Project) CaseDirectory(name string) (string, error) {
	c, ok := p.Config.Case(name)
	if !ok {
		return "", ferrors.NotFound("case", name)
	}
	return p.Path(c.Basedir), nil
}

// ValidateCaseDirectory checks that a case's export directory exists.
func (p *Project) ValidateCaseDirectory(c config.CaseConfig) error {
	dir := p.Path(c.Basedir)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return ferrors.Environmentf("case %q: directory %q does not exist", c.Name, dir)
	}
	if err != nil {
		return ferrors.Environmentf("case %q: cannot access directory %q: %v", c.Name, dir, err)
	}
	if !info.IsDir() {
		return ferrors.Environmentf("case %q: %q is not a directory", c.Name, dir)
	}
	return nil
}
