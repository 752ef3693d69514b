// Package alias resolves friendly model names to provider-native names,
// per spec.md §4.2.
package alias

// Table is a static, two-level mapping: friendly model name -> provider
// name -> provider-native model name. Loaded once from configuration.
type Table map[string]map[string]string

// Resolve returns the provider-native model name for a friendly model and
// provider. When no mapping exists, it returns the friendly name
// unchanged — this is intentional: an unknown friendly name is passed
// through so providers can accept their own native names directly.
func (t Table) Resolve(friendlyModel, providerName string) string {
	if t == nil {
		return friendlyModel
	}
	byProvider, ok := t[friendlyModel]
	if !ok {
		return friendlyModel
	}
	native, ok := byProvider[providerName]
	if !ok {
		return friendlyModel
	}
	return native
}
