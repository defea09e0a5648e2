// Package catalog holds the immutable case table and the daily rotation.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/KirkDiggler/hiddenstroke/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrCaseNotFound is returned when a case ID is not in the catalog
var ErrCaseNotFound = errors.New("case not found")

// Defaults applied to cases that omit the tunable fields
const (
	DefaultTimerSeconds  = 90
	DefaultInitialIP     = 8
	DefaultSignatureCost = 1
	DefaultMetadataCost  = 1
	DefaultFinancialCost = 2
)

//go:embed cases.yaml
var defaultCases embed.FS

// Config holds configuration for the catalog
type Config struct {
	// CaseFile is an optional path to a YAML case table. When empty, the
	// embedded demo table is loaded.
	CaseFile string
}

// Catalog is the read-only case table. Cases are loaded once at startup;
// there is no mutation API.
type Catalog struct {
	cases []*models.Case
	byID  map[string]*models.Case
}

type caseFile struct {
	Cases []*models.Case `yaml:"cases"`
}

// New loads and validates the case table
func New(cfg *Config) (*Catalog, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	var (
		data []byte
		err  error
	)
	if cfg.CaseFile != "" {
		data, err = os.ReadFile(cfg.CaseFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read case file: %w", err)
		}
	} else {
		data, err = defaultCases.ReadFile("cases.yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded case table: %w", err)
		}
	}

	var file caseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse case table: %w", err)
	}

	if len(file.Cases) == 0 {
		return nil, errors.New("case table is empty")
	}

	c := &Catalog{
		cases: file.Cases,
		byID:  make(map[string]*models.Case, len(file.Cases)),
	}

	for _, cs := range file.Cases {
		if err := prepareCase(cs); err != nil {
			return nil, fmt.Errorf("case %q: %w", cs.ID, err)
		}
		if _, exists := c.byID[cs.ID]; exists {
			return nil, fmt.Errorf("duplicate case ID %q", cs.ID)
		}
		c.byID[cs.ID] = cs
	}

	return c, nil
}

// prepareCase applies defaults and checks the case invariants
func prepareCase(cs *models.Case) error {
	if cs.ID == "" {
		return errors.New("case ID is required")
	}
	if cs.Public == nil || cs.Solution == nil {
		return errors.New("both public content and solution are required")
	}

	pub := cs.Public
	pub.CaseID = cs.ID

	if len(pub.Images) != models.CandidateCount {
		return fmt.Errorf("expected %d images, got %d", models.CandidateCount, len(pub.Images))
	}
	if len(pub.SignatureCrops) != models.CandidateCount {
		return fmt.Errorf("expected %d signature crops, got %d", models.CandidateCount, len(pub.SignatureCrops))
	}
	if len(pub.Metadata) != models.CandidateCount {
		return fmt.Errorf("expected %d metadata records, got %d", models.CandidateCount, len(pub.Metadata))
	}

	if pub.TimerSeconds <= 0 {
		pub.TimerSeconds = DefaultTimerSeconds
	}
	if pub.InitialIP <= 0 {
		pub.InitialIP = DefaultInitialIP
	}
	if pub.ToolCosts.Signature <= 0 {
		pub.ToolCosts.Signature = DefaultSignatureCost
	}
	if pub.ToolCosts.Metadata <= 0 {
		pub.ToolCosts.Metadata = DefaultMetadataCost
	}
	if pub.ToolCosts.Financial <= 0 {
		pub.ToolCosts.Financial = DefaultFinancialCost
	}

	sol := cs.Solution
	if sol.AnswerIndex < 0 || sol.AnswerIndex >= models.CandidateCount {
		return fmt.Errorf("answer index %d out of range", sol.AnswerIndex)
	}

	return nil
}

// GetCase retrieves a case by ID
func (c *Catalog) GetCase(caseID string) (*models.Case, error) {
	cs, ok := c.byID[caseID]
	if !ok {
		return nil, ErrCaseNotFound
	}
	return cs, nil
}

// SelectIndex maps a calendar date to a catalog index. The key is the UTC
// YYYYMMDD number reduced modulo the catalog size, so every player sees the
// same case on a given day and all cases are eventually shown.
func (c *Catalog) SelectIndex(date time.Time) int {
	d := date.UTC()
	key := d.Year()*10000 + int(d.Month())*100 + d.Day()
	return key % len(c.cases)
}

// CaseForDate returns the case scheduled for the given date
func (c *Catalog) CaseForDate(date time.Time) *models.Case {
	return c.cases[c.SelectIndex(date)]
}

// Size returns the number of cases in the catalog
func (c *Catalog) Size() int {
	return len(c.cases)
}
