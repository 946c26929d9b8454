package types

// JSONMap is a free-form JSON object persisted as jsonb.
type JSONMap map[string]any
