// Package config defines the respkv-server configuration structure.
//
//   - spec.go: the koanf-tagged configuration tree
//   - default.go: default values
//   - verify.go: struct-tag validation
//
// Configuration is loaded by internal/infra/confloader from a YAML file,
// a .env file and RESPKV_ environment variables, in that order.
package config
