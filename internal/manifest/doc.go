// Package manifest handles locating, parsing, and validating the
// runtime-bench manifest file.
//
// The manifest is the declarative description of a comparison run: which
// runtime targets to build, which host port each one owns, and how their
// health is checked. The canonical format is YAML (parsed with
// gopkg.in/yaml.v3), but JSON and JSONC manifests are also accepted;
// JSONC comments are stripped with github.com/tidwall/jsonc before
// parsing with the standard encoding/json library.
//
// The file schema carries an explicit version field and ignores unknown
// fields, so newer tools can add fields without breaking older readers.
package manifest
