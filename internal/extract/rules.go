package extract

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/launchradar/launchradar/internal/model"
)

//go:embed rules.yaml
var rulesYAML []byte

// LoadRules parses the embedded per-source rule tables.
func LoadRules() (map[model.Source]RuleSet, error) {
	var raw map[string]RuleSet
	if err := yaml.Unmarshal(rulesYAML, &raw); err != nil {
		return nil, eris.Wrap(err, "extract: parse rules")
	}

	rules := make(map[model.Source]RuleSet, len(raw))
	for key, rs := range raw {
		src := model.Source(key)
		if !src.Valid() {
			return nil, eris.Errorf("extract: rule table for unknown origin %q", key)
		}
		if len(rs.Name) == 0 {
			return nil, eris.Errorf("extract: origin %q has no name strategy", key)
		}
		rules[src] = rs
	}
	return rules, nil
}

// MustLoadRules panics on a malformed embedded rule table. The tables ship
// inside the binary, so a failure here is a build defect.
func MustLoadRules() map[model.Source]RuleSet {
	rules, err := LoadRules()
	if err != nil {
		panic(err)
	}
	return rules
}
