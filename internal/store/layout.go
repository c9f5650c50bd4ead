// Package store maps organizations onto the on-disk data layout and provides
// the JSON persistence helpers shared by the registry, search parameters
// and tender artifacts.
package store

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/tender-cli/internal/config"
)

// File names inside an organization directory.
const (
	registryFile         = "registry.json"
	searchParametersFile = "search_parameters.json"
	keywordsFile         = "search_keywords.json"
	profileFile          = "profile.json"
	incomingFile         = "incoming_tenders.json"
	lotsDir              = "lots"
)

// ErrInvalidName is returned for organization ids and tender numbers that
// cannot be used as a single path element.
var ErrInvalidName = errors.New("store: invalid name")

// Layout resolves per-organization paths under a storage root.
type Layout struct {
	root      string
	stateFile string
}

// NewLayout creates a Layout from storage configuration.
func NewLayout(cfg config.StorageConfig) *Layout {
	return &Layout{root: cfg.Dir, stateFile: cfg.StateFile}
}

// Root returns the storage root directory.
func (l *Layout) Root() string { return l.root }

// OrganizationDir returns <root>/<inn>.
func (l *Layout) OrganizationDir(inn string) (string, error) {
	if err := checkComponent("organization", inn); err != nil {
		return "", err
	}
	return filepath.Join(l.root, inn), nil
}

// RegistryPath returns <root>/<inn>/lots/registry.json.
func (l *Layout) RegistryPath(inn string) (string, error) {
	return l.orgFile(inn, lotsDir, registryFile)
}

// SearchParametersPath returns <root>/<inn>/search_parameters.json.
func (l *Layout) SearchParametersPath(inn string) (string, error) {
	return l.orgFile(inn, searchParametersFile)
}

// KeywordsPath returns <root>/<inn>/search_keywords.json.
func (l *Layout) KeywordsPath(inn string) (string, error) {
	return l.orgFile(inn, keywordsFile)
}

// ProfilePath returns <root>/<inn>/profile.json.
func (l *Layout) ProfilePath(inn string) (string, error) {
	return l.orgFile(inn, profileFile)
}

// IncomingPath returns <root>/<inn>/incoming_tenders.json.
func (l *Layout) IncomingPath(inn string) (string, error) {
	return l.orgFile(inn, incomingFile)
}

// TenderDir returns <root>/<inn>/lots/<number>.
func (l *Layout) TenderDir(inn, number string) (string, error) {
	if err := checkComponent("tender number", number); err != nil {
		return "", err
	}
	return l.orgFile(inn, lotsDir, number)
}

// Organizations lists the organization directories under the root in
// lexical order. A missing root yields no organizations.
func (l *Layout) Organizations() ([]string, error) {
	entries, err := readDir(l.root)
	if err != nil {
		return nil, err
	}
	var orgs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			orgs = append(orgs, e.Name())
		}
	}
	return orgs, nil
}

// ActiveOrganization reads active_inn from the launcher state file.
// A missing file or key yields "".
func (l *Layout) ActiveOrganization() (string, error) {
	if l.stateFile == "" {
		return "", nil
	}
	var state struct {
		ActiveINN string `json:"active_inn"`
	}
	if _, err := ReadJSON(l.stateFile, &state); err != nil {
		return "", eris.Wrap(err, "store: read launcher state")
	}
	return strings.TrimSpace(state.ActiveINN), nil
}

func (l *Layout) orgFile(inn string, elem ...string) (string, error) {
	dir, err := l.OrganizationDir(inn)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// checkComponent rejects values that cannot be used as a single path element.
func checkComponent(what, s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) || strings.ContainsRune(s, 0) {
		return eris.Wrapf(ErrInvalidName, "store: invalid %s %q", what, s)
	}
	return nil
}
