package config

import (
	"embed"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bridgeos/bridgeos/internal/pkg/logger"
)

// industriesYAMLEnv lets an operator override the embedded industries and
// languages list without a rebuild, mirroring the teacher's
// LEARNING_BUILD_PIPELINE_YAML override pattern for its stage graph.
const industriesYAMLEnv = "BRIDGEOS_INDUSTRIES_YAML"

//go:embed industries.yaml
var defaultIndustriesFS embed.FS

type Industry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type staticDoc struct {
	Industries map[string]Industry `yaml:"industries"`
	Languages  []string            `yaml:"languages"`
}

// Static holds spec §6's "industries (map of key -> {name, description})"
// and "languages (list of display-names)" configuration.
type Static struct {
	Industries map[string]Industry
	Languages  []string
}

// LoadStatic reads the industries/languages document from the path named
// by BRIDGEOS_INDUSTRIES_YAML if set, else falls back to the module's
// embedded default.
func LoadStatic(log *logger.Logger) (Static, error) {
	raw, err := os.ReadFile(os.Getenv(industriesYAMLEnv))
	if err != nil {
		raw, err = defaultIndustriesFS.ReadFile("industries.yaml")
		if err != nil {
			return Static{}, err
		}
	} else if log != nil {
		log.Info("loaded industries/languages override", "path", os.Getenv(industriesYAMLEnv))
	}

	var doc staticDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Static{}, err
	}
	return Static{Industries: doc.Industries, Languages: doc.Languages}, nil
}
