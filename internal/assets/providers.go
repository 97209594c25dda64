package assets

import _ "embed"

// ProvidersData holds the raw JSON catalogue of preset providers and models.
//
//go:embed providers.json
var ProvidersData []byte
