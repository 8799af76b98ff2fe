// Package config resolves the settings an engine runs under.
//
// Resolution is layered. Defaults come first, then an optional CUE file
// checked against the embedded schema, then SENTROPY_* environment
// variables. The CLI applies its flags last and calls Validate.
package config
