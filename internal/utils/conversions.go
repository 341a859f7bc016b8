package utils

func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// ToAnyStringSlice accepts the shapes a decoded JSON array can take and returns its strings.
func ToAnyStringSlice(v any) []string {
	switch s := v.(type) {
	case []any:
		return ToStringSlice(s)
	case []string:
		return append([]string(nil), s...)
	default:
		return nil
	}
}
