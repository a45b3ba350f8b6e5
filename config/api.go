package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Public paths: drawer fragments render without credentials, mutations
	// and the journal stay behind auth.
	return []string{"/api/cart", "/api/gift/config", "/graphql"}
}
