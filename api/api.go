// Package api embeds the OpenAPI document for the overlay's HTTP API.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPISpec []byte
