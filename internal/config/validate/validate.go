package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/open-edge-platform/rocdecode-tool/internal/config/schema"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

// ValidateAgainstSchema validates JSON data against the named schema. When
// ref is not empty it selects a sub-schema, e.g. "/$defs/bundle".
func ValidateAgainstSchema(name string, schemaBytes []byte, data []byte, ref string) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(schemaBytes)); err != nil {
		return fmt.Errorf("loading schema %s: %w", name, err)
	}

	target := name
	if ref != "" {
		target = name + "#" + ref
	}
	sch, err := compiler.Compile(target)
	if err != nil {
		return fmt.Errorf("compiling schema %s: %w", target, err)
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("schema validation against %s failed: %s", name, describe(ve))
		}
		return fmt.Errorf("schema validation against %s failed: %w", name, err)
	}
	return nil
}

// ValidatePackageTableJSON validates a package table in JSON form.
func ValidatePackageTableJSON(data []byte) error {
	return ValidateAgainstSchema("package-table.schema.json", schema.PackageTableSchema, data, "")
}

// ValidatePackageTableYAML converts YAML to JSON and validates it.
func ValidatePackageTableYAML(data []byte) error {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting package table to JSON: %w", err)
	}
	return ValidatePackageTableJSON(jsonData)
}

// describe flattens the innermost causes into one line per failing location.
func describe(ve *jsonschema.ValidationError) string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return fmt.Sprintf("%s: %s", loc, ve.Message)
	}
	var buf bytes.Buffer
	for i, c := range ve.Causes {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(describe(c))
	}
	return buf.String()
}
