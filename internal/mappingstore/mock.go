package mappingstore

// MockMappingStore is an in-memory stand-in for MappingStore in tests.
type MockMappingStore struct {
	Names    map[string]string
	Accounts map[string]string

	LoadNamesError    error
	LoadAccountsError error
	SaveError         error
}

// LoadNameMappings returns a copy of the mock name table.
func (m *MockMappingStore) LoadNameMappings() (map[string]string, error) {
	if m.LoadNamesError != nil {
		return nil, m.LoadNamesError
	}
	return copyMap(m.Names), nil
}

// LoadAccountMappings returns a copy of the mock account table.
func (m *MockMappingStore) LoadAccountMappings() (map[string]string, error) {
	if m.LoadAccountsError != nil {
		return nil, m.LoadAccountsError
	}
	return copyMap(m.Accounts), nil
}

// SaveNameMappings replaces the mock name table.
func (m *MockMappingStore) SaveNameMappings(mappings map[string]string) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Names = copyMap(mappings)
	return nil
}

// SaveAccountMappings replaces the mock account table.
func (m *MockMappingStore) SaveAccountMappings(mappings map[string]string) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Accounts = copyMap(mappings)
	return nil
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
