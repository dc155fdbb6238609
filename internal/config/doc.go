// Package config resolves the crateci run configuration from three layers:
// an optional dotenv file, the process environment (Travis-style variable
// names), and an optional per-project config file (.crateci.json in JSONC
// or .crateci.yml in YAML).
//
// Resolution order is: flags > environment > project file > defaults.
// The flag layer is applied by the cli package after the merge here.
// Configuration is resolved once at startup and treated as immutable for
// the lifetime of the process.
package config
