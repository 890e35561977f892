package schema

import _ "embed"

// PackageTableSchema is the JSON schema of the dependency package table.
//
//go:embed package-table.schema.json
var PackageTableSchema []byte
