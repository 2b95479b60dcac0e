package transpile

// Plugin identifiers owned by this package. Compatibility plugin identifiers
// live in the compat table; these name the transforms the builder inserts
// itself.
const (
	PluginDebugFlagInline = "debug-flag-inline"
	PluginDebugMacroLower = "debug-macro-lower"
	PluginModuleRewrite   = "module-rewrite"
)

// DebugPlugins decides which debug rewrite plugins apply for the build
// environment. With disabled set, or when the environment is neither
// development nor production, no debug rewriting happens and source passes
// through unchanged.
//
// Both plugins carry the literal flag value to inline: true for development,
// false for production. The flag must end up as a syntactic boolean constant
// so downstream dead-branch elimination can act on it.
func DebugPlugins(env Environment, disabled bool) []Plugin {
	if disabled {
		return nil
	}

	var value bool
	switch env {
	case Development:
		value = true
	case Production:
		value = false
	default:
		return nil
	}

	return []Plugin{
		{Name: PluginDebugFlagInline, Options: map[string]any{"value": value}},
		{Name: PluginDebugMacroLower, Options: map[string]any{"value": value}},
	}
}
