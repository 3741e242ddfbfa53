package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                = "UNKNOWN"
	CodeEmptyCatalog           = "EMPTY_CATALOG"
	CodeInvalidTemplate        = "INVALID_TEMPLATE"
	CodeCanonicalizationFailed = "CANONICALIZATION_FAILED"
	CodeInvalidStepCount       = "INVALID_STEP_COUNT"
	CodeSeedOutOfRange         = "SEED_OUT_OF_RANGE"
	CodeNotFound               = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: BaseLocale,
	messages: map[Code]string{
		CodeUnknown: "An unexpected error occurred",

		// Catalog errors
		CodeEmptyCatalog:    "No templates are loaded; nothing can be generated",
		CodeInvalidTemplate: "Template {{.Template}} is invalid: {{.Reason}}",

		// Hashing errors
		CodeCanonicalizationFailed: "Data cannot be canonicalized for hashing",

		// Scenario errors
		CodeInvalidStepCount: "Step count {{.Steps}} must not be negative",

		// Random/seed errors
		CodeSeedOutOfRange: "Random seed {{.Seed}} is out of valid range",

		// Storage errors
		CodeNotFound: "{{.Kind}} {{.ID}} was not found",
	},
}
