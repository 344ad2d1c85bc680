package model

// Property is one analytics view exported by a run.
type Property struct {
	ID    string `yaml:"id"`    // e.g. "ga:172857801"
	Label string `yaml:"label"` // output directory name, e.g. "Spain"
}

// DefaultProperties returns the built-in views in export order.
// A fresh slice is returned on every call.
func DefaultProperties() []Property {
	return []Property{
		{ID: "ga:172857801", Label: "Spain"},
		{ID: "ga:185615721", Label: "Germany"},
		{ID: "ga:172849730", Label: "Italy"},
		{ID: "ga:174328120", Label: "Portugal"},
	}
}

// PropertyByKey finds a property by ID or label.
func PropertyByKey(props []Property, key string) (Property, bool) {
	for _, p := range props {
		if p.ID == key || p.Label == key {
			return p, true
		}
	}
	return Property{}, false
}
