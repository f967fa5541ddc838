package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type SyncPath struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// SyncGroup is one named source/target mapping, synced as a unit.
type SyncGroup struct {
	Name string
	SyncPath
}

// SyncGroups keeps the order the groups are declared in the config file.
type SyncGroups []SyncGroup

func (g *SyncGroups) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("syncPaths should be a mapping, line %d", node.Line)
	}

	groups := make(SyncGroups, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var path SyncPath
		if err := node.Content[i+1].Decode(&path); err != nil {
			return fmt.Errorf("error decoding sync group %s: %w", name, err)
		}
		groups = append(groups, SyncGroup{Name: name, SyncPath: path})
	}

	*g = groups
	return nil
}

// UnmarshalJSON walks the object token by token since a Go map would lose the declaration order. A repeated
// group name keeps its first position and its last value, like encoding/json does for struct fields.
func (g *SyncGroups) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token == nil {
		return nil
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("syncPaths should be a mapping, got %s", bytes.TrimSpace(data))
	}

	var groups SyncGroups
	index := map[string]int{}
	for decoder.More() {
		token, err = decoder.Token()
		if err != nil {
			return err
		}
		name, ok := token.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in syncPaths", token)
		}

		var path SyncPath
		if err = decoder.Decode(&path); err != nil {
			return fmt.Errorf("error decoding sync group %s: %w", name, err)
		}

		if i, seen := index[name]; seen {
			groups[i].SyncPath = path
			continue
		}
		index[name] = len(groups)
		groups = append(groups, SyncGroup{Name: name, SyncPath: path})
	}

	if _, err = decoder.Token(); err != nil {
		return err
	}

	*g = groups
	return nil
}

type BuildConfig struct {
	BuildCommand   string `json:"buildCommand" yaml:"buildCommand"`
	InstallCommand string `json:"installCommand" yaml:"installCommand"`
	TestCommand    string `json:"testCommand" yaml:"testCommand"`
}

type Automation struct {
	AutoCommit bool `json:"autoCommit" yaml:"autoCommit"`
	AutoDeploy bool `json:"autoDeploy" yaml:"autoDeploy"`
	AutoTest   bool `json:"autoTest" yaml:"autoTest"`
}

type DeployConfig struct {
	DeployCommand string `json:"deployCommand" yaml:"deployCommand"`
}

// DependencyManifest points at the showcase manifest and the local one it is merged into.
type DependencyManifest struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

type Config struct {
	Filename           string              `json:"-" yaml:"-"`
	Automation         Automation          `json:"automation" yaml:"automation"`
	BuildConfig        BuildConfig         `json:"buildConfig" yaml:"buildConfig"`
	DependencyManifest *DependencyManifest `json:"dependencyManifest" yaml:"dependencyManifest"`
	DeployConfig       DeployConfig        `json:"deployConfig" yaml:"deployConfig"`
	ReportFile         string              `json:"reportFile" yaml:"reportFile"`
	SourceRef          string              `json:"sourceRef" yaml:"sourceRef"`
	SourceRepo         string              `json:"sourceRepo" yaml:"sourceRepo"`
	SyncPaths          SyncGroups          `json:"syncPaths" yaml:"syncPaths"`
	UseGitHubClient    bool                `json:"useGitHubClient" yaml:"useGitHubClient"`
}

func (c Config) Validate() error {
	fields := strings.Split(c.SourceRepo, "/")
	if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
		return fmt.Errorf("sourceRepo should be in owner/name form, got %q", c.SourceRepo)
	}

	for _, group := range c.SyncPaths {
		if group.Target == "" {
			return fmt.Errorf("sync group %s has no target", group.Name)
		}
	}

	if c.DependencyManifest != nil && c.DependencyManifest.Target == "" {
		return fmt.Errorf("dependencyManifest has no target")
	}

	return nil
}

// UnmarshalConfig decodes a sync manifest. JSON documents go through encoding/json, anything else is read as
// YAML.
func UnmarshalConfig(data []byte) (Config, error) {
	var config Config
	if json.Valid(data) {
		if err := json.Unmarshal(data, &config); err != nil {
			return config, err
		}
	} else if err := yaml.Unmarshal(data, &config); err != nil {
		return config, err
	}

	return config, config.Validate()
}
