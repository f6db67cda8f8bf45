/*
Package config loads and validates application settings.

Values are resolved in this order, later sources winning:

 1. Built-in defaults (Default)
 2. A YAML file given with --config or TFP_CONFIG
 3. Environment variables with the TFP_ prefix, optionally seeded from .env

Environment variable names follow the section and field, for example:

	TFP_DATASET_SOURCE=sqlite
	TFP_FIT_TIMEOUT=45s
	TFP_FIT_CONCURRENCY=3
	TFP_LOGGING_LEVEL=debug
	TFP_SERVER_PORT=9090

The equivalent YAML:

	dataset:
	  source: sqlite
	fit:
	  timeout: 45s
	  concurrency: 3
	logging:
	  level: debug
	server:
	  port: 9090
*/
package config
