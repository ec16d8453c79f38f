package bento

import "time"

// Manifest describes a built bento, serialized as bento.yaml both inside the
// archived context and next to it in the store.
type Manifest struct {
	Name      string       `yaml:"name"`
	Version   string       `yaml:"version"`
	Service   string       `yaml:"service"`
	Model     string       `yaml:"model"`
	CreatedAt time.Time    `yaml:"creationTime"`
	Include   []string     `yaml:"include"`
	Docker    DockerConfig `yaml:"docker"`
	Python    PythonConfig `yaml:"python"`
}

type DockerConfig struct {
	SystemPackages []string `yaml:"systemPackages"`
}

type PythonConfig struct {
	RequirementsTxt string `yaml:"requirementsTxt"`
	LockPackages    bool   `yaml:"lockPackages"`
}

func (m Manifest) Tag() string {
	return m.Name + ":" + m.Version
}
