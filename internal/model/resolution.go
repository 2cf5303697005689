package model

// ResolutionCreateNew is the marker an operator submits to mint a flagged
// value into the vocabulary instead of mapping it to an existing one.
const ResolutionCreateNew = "create_new"

// Resolutions maps canonical column key -> original value -> operator decision.
// A decision is either ResolutionCreateNew or a replacement value drawn from
// the valid vocabulary.
type Resolutions map[string]map[string]string

// Lookup returns the resolution recorded for a value under a column key, if any.
func (r Resolutions) Lookup(columnKey, originalValue string) (string, bool) {
	byValue, ok := r[columnKey]
	if !ok {
		return "", false
	}
	resolution, ok := byValue[originalValue]
	return resolution, ok
}

// Set records a resolution, allocating nested maps as needed.
func (r Resolutions) Set(columnKey, originalValue, resolution string) {
	if r[columnKey] == nil {
		r[columnKey] = make(map[string]string)
	}
	r[columnKey][originalValue] = resolution
}
