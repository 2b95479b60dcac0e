package transpile

import "encoding/json"

// Trace captures provenance for the merged options: which namespace supplied
// each effective key.
type Trace struct {
	Entries []Provenance `json:"entries"`
}

// Provenance details how a single key reached the resolved options.
type Provenance struct {
	Key       string `json:"key"`
	Namespace string `json:"namespace"`
	Value     any    `json:"value,omitempty"`
}

// ToJSON serialises the trace for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload previously produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// Lookup returns the provenance entry for key.
func (t Trace) Lookup(key string) (Provenance, bool) {
	for _, entry := range t.Entries {
		if entry.Key == key {
			return entry, true
		}
	}
	return Provenance{}, false
}
