// Package confloader loads configuration into koanf-tagged structs.
//
// Sources, later overriding earlier:
//
//  1. Default values already present in the target struct
//  2. A .env file (optional)
//  3. A YAML configuration file
//  4. Environment variables
//
// Environment and .env keys are the koanf path upper-cased with dots
// replaced by underscores and the prefix prepended, e.g.
// RESPKV_SERVER_REDIS_READ_TIMEOUT for server.redis.read_timeout. Names that
// match no field of the target are ignored.
//
// Watcher reports changes to the configuration file so it can be reloaded.
package confloader
