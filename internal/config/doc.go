// Package config loads the SaaSPulse configuration.
//
// # Sources
//
// Values are resolved in increasing order of precedence:
//
//	1. Default()
//	2. a YAML file: $SAASPULSE_CONFIG, ./config.yaml or ./configs/config.yaml
//	3. a .env file in the working directory
//	4. environment variables
//
// # Environment Variables
//
// Variables are named SAASPULSE_<SECTION>_<FIELD>:
//
//	SAASPULSE_SERVER_PORT=8080
//	SAASPULSE_LOGGING_LEVEL=debug
//	SAASPULSE_REPORT_ANCHOR=latest
//	SAASPULSE_SUMMARY_MODEL=gpt-4o-mini
//
// The summarizer key falls back to OPENAI_API_KEY when
// SAASPULSE_SUMMARY_API_KEY is unset. Without a key, reports are rendered
// with the "summary unavailable" text.
//
// # Validation
//
// The loaded struct is checked with go-playground/validator tags; Load fails
// on the first invalid section.
package config
