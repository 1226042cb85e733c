package bundling

import (
	"encoding/json"
	"fmt"

	"reqbundler/internal/field"
)

// ComputeBundleID computes a bundle id from the discriminator fields of
// req. Field names may contain dots to indicate nested traversal. Non-nil
// values are stringified, so two requests with equal stringified values
// for every field produce the same id regardless of underlying types.
//
// Returns a *field.MissingFieldError if any field path does not resolve.
func ComputeBundleID(req interface{}, discriminatorFields []string) (BundleID, error) {
	parts := make([]interface{}, 0, len(discriminatorFields))
	for _, name := range discriminatorFields {
		v, err := field.Resolve(req, name)
		if err != nil {
			return "", err
		}
		if v == nil {
			parts = append(parts, nil)
		} else {
			parts = append(parts, field.Stringify(v))
		}
	}

	key, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("failed to encode bundle id: %w", err)
	}
	return BundleID(key), nil
}
