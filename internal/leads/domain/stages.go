package domain

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stages.yaml
var defaultStagesYAML []byte

type catalogFile struct {
	Lead    []string          `yaml:"lead"`
	Group   []string          `yaml:"group"`
	Aliases map[string]string `yaml:"aliases"`
}

// StageCatalog canonicalizes stage labels. The stage set is open: unknown
// labels pass through trimmed.
type StageCatalog struct {
	lead       []string
	group      []string
	leadIndex  map[string]string
	groupIndex map[string]string
}

// DefaultStageCatalog returns the catalog compiled into the binary.
func DefaultStageCatalog() *StageCatalog {
	catalog, err := ParseStageCatalog(defaultStagesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded stages.yaml: %v", err))
	}
	return catalog
}

// LoadStageCatalog reads a catalog from path, or returns the default one when
// path is empty.
func LoadStageCatalog(path string) (*StageCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultStageCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage catalog: %w", err)
	}
	return ParseStageCatalog(data)
}

// ParseStageCatalog decodes a YAML catalog.
func ParseStageCatalog(data []byte) (*StageCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode stage catalog: %w", err)
	}
	if len(file.Lead) == 0 || len(file.Group) == 0 {
		return nil, fmt.Errorf("stage catalog needs lead and group stages")
	}

	c := &StageCatalog{
		lead:       trimAll(file.Lead),
		group:      trimAll(file.Group),
		leadIndex:  make(map[string]string),
		groupIndex: make(map[string]string),
	}
	for _, s := range c.lead {
		c.leadIndex[foldKey(s)] = s
	}
	for _, s := range c.group {
		c.groupIndex[foldKey(s)] = s
	}
	for alias, target := range file.Aliases {
		canonical, ok := c.leadIndex[foldKey(target)]
		if !ok {
			return nil, fmt.Errorf("alias %q points at unknown lead stage %q", alias, target)
		}
		c.leadIndex[foldKey(alias)] = canonical
	}
	return c, nil
}

// LeadStage returns the canonical spelling of a lead stage label.
func (c *StageCatalog) LeadStage(label string) string {
	return canonical(c.leadIndex, label)
}

// GroupStage returns the canonical spelling of a group stage label.
func (c *StageCatalog) GroupStage(label string) string {
	return canonical(c.groupIndex, label)
}

// LeadStages lists the known lead stages in pipeline order.
func (c *StageCatalog) LeadStages() []string {
	return append([]string(nil), c.lead...)
}

// GroupStages lists the known group stages.
func (c *StageCatalog) GroupStages() []string {
	return append([]string(nil), c.group...)
}

func canonical(index map[string]string, label string) string {
	trimmed := strings.TrimSpace(label)
	if known, ok := index[foldKey(trimmed)]; ok {
		return known
	}
	return trimmed
}

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
