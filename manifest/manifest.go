// Package manifest merges the dependency maps of a package.json style manifest.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
)

var dependencyKeys = []string{"dependencies", "devDependencies"}

// Manifest keeps every top-level key of the document, in document order, so unknown fields survive a merge
// and the rewritten file diffs cleanly against the original.
type Manifest struct {
	keys   []string
	fields map[string]json.RawMessage
}

func Parse(data []byte) (*Manifest, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("error parsing manifest: %w", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("manifest is not a JSON object")
	}

	m := &Manifest{}
	for decoder.More() {
		token, err = decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("error parsing manifest: %w", err)
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in manifest", token)
		}

		var raw json.RawMessage
		if err = decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("error parsing manifest key %s: %w", key, err)
		}
		m.Set(key, raw)
	}

	if _, err = decoder.Token(); err != nil {
		return nil, fmt.Errorf("error parsing manifest: %w", err)
	}
	return m, nil
}

func ReadFile(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Keys returns the top-level keys in document order.
func (m *Manifest) Keys() []string {
	return slices.Clone(m.keys)
}

func (m *Manifest) Get(key string) (json.RawMessage, bool) {
	raw, ok := m.fields[key]
	return raw, ok
}

// Set replaces the value of key in place, appending the key when it is new.
func (m *Manifest) Set(key string, raw json.RawMessage) {
	if m.fields == nil {
		m.fields = map[string]json.RawMessage{}
	}
	if _, ok := m.fields[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.fields[key] = raw
}

func (m *Manifest) clone() *Manifest {
	return &Manifest{keys: slices.Clone(m.keys), fields: lo.Assign(m.fields)}
}

func (m *Manifest) dependencies(key string) (map[string]string, error) {
	raw, ok := m.Get(key)
	if !ok {
		return map[string]string{}, nil
	}

	deps := map[string]string{}
	if err := json.Unmarshal(raw, &deps); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", key, err)
	}
	return deps, nil
}

// encode marshals v without escaping <, > and &, which are common in version ranges and scripts.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := encode(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(m.fields[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Marshal renders the manifest with two space indentation and a trailing newline, the way npm writes it.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Manifest) WriteFile(filename string) error {
	out, err := m.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, out, 0o644)
}

// version extracts the base version of a range like ^1.2.3, returning nil when it is not a plain version.
func version(spec string) *semver.Version {
	trimmed := strings.TrimLeft(strings.TrimSpace(spec), "^~=v")
	v, err := semver.StrictNewVersion(trimmed)
	if err != nil {
		return nil
	}
	return v
}

func mergeDeps(key string, local, source map[string]string) (map[string]string, []string) {
	merged := lo.Assign(local)
	var warnings []string

	names := lo.Keys(source)
	sort.Strings(names)
	for _, name := range names {
		sourceSpec := source[name]
		localSpec, ok := local[name]
		if !ok {
			merged[name] = sourceSpec
			warnings = append(warnings, fmt.Sprintf("%s: added %s@%s", key, name, sourceSpec))
			continue
		}

		if localSpec == sourceSpec {
			continue
		}

		localVersion, sourceVersion := version(localSpec), version(sourceSpec)
		if localVersion == nil || sourceVersion == nil {
			warnings = append(warnings, fmt.Sprintf("%s: kept %s@%s, showcase wants %s", key, name, localSpec,
				sourceSpec))
			continue
		}

		if sourceVersion.GreaterThan(localVersion) {
			merged[name] = sourceSpec
			warnings = append(warnings, fmt.Sprintf("%s: upgraded %s from %s to %s", key, name, localSpec,
				sourceSpec))
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: kept %s@%s over %s", key, name, localSpec, sourceSpec))
		}
	}

	return merged, warnings
}

// Merge adds the source dependencies missing from local and upgrades those where the source pins a higher
// version. The returned messages describe every change or conflict.
func Merge(local, source *Manifest) (*Manifest, []string, error) {
	merged := local.clone()
	var messages []string

	for _, key := range dependencyKeys {
		localDeps, err := local.dependencies(key)
		if err != nil {
			return nil, nil, err
		}
		sourceDeps, err := source.dependencies(key)
		if err != nil {
			return nil, nil, err
		}
		if len(sourceDeps) == 0 {
			continue
		}

		deps, warnings := mergeDeps(key, localDeps, sourceDeps)
		raw, err := encode(deps)
		if err != nil {
			return nil, nil, err
		}
		merged.Set(key, raw)
		messages = append(messages, warnings...)
	}

	return merged, messages, nil
}
