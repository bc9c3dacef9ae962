package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"

	"finplan/internal/models"
)

const (
	profilesDir = "profiles"
	reportsDir  = "reports"
	docExt      = ".json"
)

var (
	ErrInvalidProfileID = errors.New("storage: profile id must be 1-64 letters, digits, '-' or '_'")
	ErrProfileNotFound  = errors.New("storage: profile not found")
	ErrReportNotFound   = errors.New("storage: report not found")
)

var profileIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidProfileID reports whether id can name a stored profile
func ValidProfileID(id string) bool {
	return profileIDPattern.MatchString(id)
}

// ProfileStore persists analysis inputs and the last report per profile
type ProfileStore struct {
	store *Storage
}

// NewProfileStore creates a profile store on top of s
func NewProfileStore(s *Storage) *ProfileStore {
	return &ProfileStore{store: s}
}

// Storage returns the underlying document store
func (p *ProfileStore) Storage() *Storage {
	return p.store
}

// SaveProfile writes the inputs of profile id, replacing any previous version
func (p *ProfileStore) SaveProfile(id string, input models.AnalysisInput) error {
	return p.save(profilesDir, id, input)
}

// LoadProfile reads the inputs of profile id
func (p *ProfileStore) LoadProfile(id string) (models.AnalysisInput, error) {
	var input models.AnalysisInput
	err := p.load(profilesDir, id, &input)
	if errors.Is(err, fs.ErrNotExist) {
		return input, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	return input, err
}

// ListProfiles returns the stored profile ids, sorted
func (p *ProfileStore) ListProfiles() ([]string, error) {
	return p.store.List(profilesDir, docExt)
}

// SaveReport stores the latest report of profile id
func (p *ProfileStore) SaveReport(id string, report *models.GoalAnalysisReport) error {
	return p.save(reportsDir, id, report)
}

// LoadReport reads the latest report of profile id
func (p *ProfileStore) LoadReport(id string) (*models.GoalAnalysisReport, error) {
	report := &models.GoalAnalysisReport{}
	err := p.load(reportsDir, id, report)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// DeleteProfile removes a profile and its report
func (p *ProfileStore) DeleteProfile(id string) error {
	if !ValidProfileID(id) {
		return ErrInvalidProfileID
	}
	if err := p.store.Remove(docPath(profilesDir, id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, id)
		}
		return err
	}
	if err := p.store.Remove(docPath(reportsDir, id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (p *ProfileStore) save(dir, id string, v any) error {
	if !ValidProfileID(id) {
		return ErrInvalidProfileID
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", dir, id, err)
	}
	return p.store.WriteFile(docPath(dir, id), data)
}

func (p *ProfileStore) load(dir, id string, v any) error {
	if !ValidProfileID(id) {
		return ErrInvalidProfileID
	}
	data, err := p.store.ReadFile(docPath(dir, id))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", dir, id, err)
	}
	return nil
}

func docPath(dir, id string) string {
	return dir + "/" + id + docExt
}
