package config

// CartSections are the fragments requested alongside every cart mutation so
// responses carry re-rendered markup.
func CartSections() []string {
	return []string{"cart-drawer", "cart-icon-bubble"}
}
