// Package filevault embeds repo-level artifacts into the binary so serving
// them does not depend on the process working directory.
package filevault

import _ "embed"

// OpenAPISpec is the OpenAPI document served at /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
