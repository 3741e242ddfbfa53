package catalog

// Default returns the built-in template set.
func Default() *Catalog {
	return New(
		Template{
			Name:        "RouterConfig",
			ObjectType:  "OSI_3_Routing",
			Description: "A router configuration file.",
			Fields: []Field{
				{Name: "ip", Rule: Dynamic(KindAddress)},
				{Name: "routes", Rule: Literal([]any{})},
				{Name: "status", Rule: Literal("unknown")},
			},
		},
		Template{
			Name:        "WebsiteLogin",
			ObjectType:  "OSI_7_ApplicationAccess",
			Description: "A login form for a website.",
			Fields: []Field{
				{Name: "url", Rule: Dynamic(KindURL)},
				{Name: "fields", Rule: Literal([]any{"username", "password"})},
				{Name: "method", Rule: Literal("POST")},
			},
		},
		Template{
			Name:        "VulnerabilityCVE",
			ObjectType:  "OSI_Security",
			Description: "A detected CVE on a system.",
			Fields: []Field{
				{Name: "cve_id", Rule: Dynamic(KindIdentifier)},
				{Name: "severity", Rule: Literal("medium")},
				{Name: "target_ip", Rule: Dynamic(KindAddress)},
			},
		},
		Template{
			Name:        "TelemetryStream",
			ObjectType:  "OSI_1_Physical",
			Description: "Live telemetry data from a sensor.",
			Fields: []Field{
				{Name: "sensor_id", Rule: Dynamic(KindFallback)},
				{Name: "value", Rule: Dynamic(KindMeasurement)},
				{Name: "timestamp", Rule: Dynamic(KindTimestamp)},
			},
		},
	)
}
