package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Template errors (L001-L009, L020-L029)
	"L001": {
		Category:   CategoryTemplate,
		Message:    "Template placeholders without properties",
		Suggestion: "Provide a property for every {name} placeholder in the template.",
	},
	"L020": {
		Category:   CategoryTemplate,
		Message:    "Template parse failed",
		Suggestion: "Check that the evaluated template is well-formed HTML.",
	},
	"L021": {
		Category:   CategoryTemplate,
		Message:    "Template must have a single root node",
		Suggestion: "Wrap the template markup in one enclosing element.",
	},

	// Reactor errors (L010-L019)
	"L010": {
		Category:   CategoryReactor,
		Message:    "Reactor template required",
		Suggestion: "Use a participant for template-less event handling.",
	},
	"L011": {
		Category: CategoryReactor,
		Message:  "Reactor has no rendered element",
	},
	"L012": {
		Category: CategoryReactor,
		Message:  "Event name required",
	},

	// Reconcile errors (L030-L039)
	"L030": {
		Category:   CategoryReconcile,
		Message:    "Reconcile shape mismatch",
		Suggestion: "Keep the template's element structure fixed; vary only text and attributes.",
	},

	// Source errors (L040-L049)
	"L040": {
		Category: CategorySource,
		Message:  "Template not found",
	},
	"L041": {
		Category: CategorySource,
		Message:  "Template read failed",
	},

	// Config errors (L120-L149)
	"L120": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Suggestion: "Check that lance.json is valid JSON.",
	},
	"L122": {
		Category: CategoryConfig,
		Message:  "Invalid port",
	},
	"L123": {
		Category: CategoryConfig,
		Message:  "Invalid log setting",
	},
	"L124": {
		Category: CategoryConfig,
		Message:  "Invalid metrics setting",
	},
	"L125": {
		Category: CategoryConfig,
		Message:  "Configuration file already exists",
	},
	"L141": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create lance.json or pass --config with its directory.",
	},

	// CLI errors (L150-L159)
	"L150": {
		Category: CategoryCLI,
		Message:  "Invalid property flag",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
