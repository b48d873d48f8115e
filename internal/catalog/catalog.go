// Package catalog holds the compliance control taxonomy the scorer evaluates
// policy text against. A Catalog is loaded once and is read-only afterwards.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Standard identifies one of the compliance frameworks in the catalog.
type Standard string

// Supported standards, in evaluation order.
const (
	StandardNIST Standard = "NIST"
	StandardISO  Standard = "ISO"
	StandardDPDP Standard = "DPDP"
)

// Standards returns all standards in their fixed evaluation order.
func Standards() []Standard {
	return []Standard{StandardNIST, StandardISO, StandardDPDP}
}

// DisplayName returns the human-readable framework name.
func (s Standard) DisplayName() string {
	switch s {
	case StandardNIST:
		return "NIST 800-53"
	case StandardISO:
		return "ISO 27001"
	case StandardDPDP:
		return "DPDP Act 2023"
	default:
		return string(s)
	}
}

// Key returns the name of the standard's array in a catalog document.
func (s Standard) Key() string {
	switch s {
	case StandardNIST:
		return "nist_controls"
	case StandardISO:
		return "iso_controls"
	case StandardDPDP:
		return "dpdp_requirements"
	default:
		return strings.ToLower(string(s))
	}
}

// Control is a single compliance control and the keywords that evidence it.
type Control struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Catalog groups controls by standard.
type Catalog struct {
	NIST []Control `json:"nist_controls" yaml:"nist_controls"`
	ISO  []Control `json:"iso_controls" yaml:"iso_controls"`
	DPDP []Control `json:"dpdp_requirements" yaml:"dpdp_requirements"`
}

// Group is the controls of one standard.
type Group struct {
	Standard Standard
	Controls []Control
}

// Empty returns a catalog with zero controls.
func Empty() *Catalog {
	return &Catalog{NIST: []Control{}, ISO: []Control{}, DPDP: []Control{}}
}

// Controls returns the controls of a standard in catalog order.
func (c *Catalog) Controls(s Standard) []Control {
	if c == nil {
		return nil
	}
	switch s {
	case StandardNIST:
		return c.NIST
	case StandardISO:
		return c.ISO
	case StandardDPDP:
		return c.DPDP
	default:
		return nil
	}
}

// Groups returns every standard with its controls, NIST then ISO then DPDP.
func (c *Catalog) Groups() []Group {
	groups := make([]Group, 0, 3)
	for _, s := range Standards() {
		groups = append(groups, Group{Standard: s, Controls: c.Controls(s)})
	}
	return groups
}

// Total returns the number of controls across all standards.
func (c *Catalog) Total() int {
	if c == nil {
		return 0
	}
	return len(c.NIST) + len(c.ISO) + len(c.DPDP)
}

// Find looks up a control by standard and id.
func (c *Catalog) Find(s Standard, id string) (Control, bool) {
	for _, ctrl := range c.Controls(s) {
		if ctrl.ID == id {
			return ctrl, true
		}
	}
	return Control{}, false
}

// Validate checks the catalog invariants: non-empty id and name, at least one
// non-blank keyword, and ids unique within a standard.
func (c *Catalog) Validate() error {
	var errs []error
	for _, g := range c.Groups() {
		seen := make(map[string]bool, len(g.Controls))
		for i, ctrl := range g.Controls {
			where := fmt.Sprintf("%s[%d]", g.Standard.Key(), i)
			if strings.TrimSpace(ctrl.ID) == "" {
				errs = append(errs, fmt.Errorf("%s: id is required", where))
			} else if seen[ctrl.ID] {
				errs = append(errs, fmt.Errorf("%s: duplicate id %q", where, ctrl.ID))
			}
			seen[ctrl.ID] = true

			if strings.TrimSpace(ctrl.Name) == "" {
				errs = append(errs, fmt.Errorf("%s: name is required", where))
			}
			if !hasKeyword(ctrl.Keywords) {
				errs = append(errs, fmt.Errorf("%s (%s): at least one keyword is required", where, ctrl.ID))
			}
		}
	}
	return errors.Join(errs...)
}

func hasKeyword(keywords []string) bool {
	for _, k := range keywords {
		if strings.TrimSpace(k) != "" {
			return true
		}
	}
	return false
}

// Decode parses a catalog document. JSON documents are decoded with
// encoding/json, anything else as YAML.
func Decode(data []byte) (*Catalog, error) {
	var c Catalog
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("catalog document is empty")
	}

	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return nil, fmt.Errorf("parsing catalog JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &c); err != nil {
			return nil, fmt.Errorf("parsing catalog YAML: %w", err)
		}
	}

	// Normalize nil groups so an absent array still means zero controls.
	if c.NIST == nil {
		c.NIST = []Control{}
	}
	if c.ISO == nil {
		c.ISO = []Control{}
	}
	if c.DPDP == nil {
		c.DPDP = []Control{}
	}
	return &c, nil
}
