// Package plan loads test plan files and builds the statement chains the
// scheduler executes.
package plan

import (
	"os"

	"gopkg.in/yaml.v3"

	"rsbench/internal/config"
	"rsbench/internal/domain"
)

// entry decodes one test file item: a single SQL string or a list of SQL
// strings forming a dependency chain. Statement text is kept verbatim,
// including multi-line whitespace.
type entry struct {
	steps []string
}

func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var sql string
		if err := node.Decode(&sql); err != nil {
			return err
		}
		e.steps = []string{sql}
		return nil
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return domain.ErrTestFile("line %d: chain items must be SQL strings", item.Line)
			}
			var sql string
			if err := item.Decode(&sql); err != nil {
				return err
			}
			e.steps = append(e.steps, sql)
		}
		if len(e.steps) == 0 {
			return domain.ErrTestFile("line %d: chain must contain at least one statement", node.Line)
		}
		return nil
	default:
		return domain.ErrTestFile("line %d: test entries must be a SQL string or a list of SQL strings", node.Line)
	}
}

// Load reads a test file: an ordered YAML list where each item is either one
// SQL string or an ordered list of dependent SQL strings.
func Load(path string) ([]domain.TestSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrTestFile("read test file %s: %v", path, err)
	}

	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		if _, ok := err.(*domain.TestFileError); ok {
			return nil, err
		}
		return nil, domain.ErrTestFile("parse test file %s: %v", path, err)
	}
	if len(entries) == 0 {
		return nil, domain.ErrTestFile("test file %s contains no tests", path)
	}

	specs := make([]domain.TestSpec, 0, len(entries))
	for _, e := range entries {
		specs = append(specs, domain.TestSpec{Steps: e.steps})
	}
	return specs, nil
}

// BuildChain prepends the session-setup statements to a test's steps. The
// setup statements are always sent so every attempt runs with an explicit
// result-cache and MV-rewrite session state.
func BuildChain(target *config.Target, spec domain.TestSpec) []string {
	chain := []string{
		"set enable_result_cache_for_session to " + onOff(target.ResultCache) + ";",
		"set mv_enable_aqmv_for_session to " + onOff(target.MvRewrite) + ";",
	}
	return append(chain, spec.Steps...)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
