package config

import (
	"encoding/json"
	"os"

	"github.com/skarpenko/govault/internal/flagx"
)

// JsonScryptProfile mirrors ScryptProfile for JSON unmarshalling.
type JsonScryptProfile struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct.
type JsonConfig struct {
	DatabaseDSN    string             `json:"database_dsn"`
	Interactive    *JsonScryptProfile `json:"scrypt_interactive"`
	FileEncryption *JsonScryptProfile `json:"scrypt_file_encryption"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics (fatal at startup).
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.Interactive != nil {
		config.Interactive = ScryptProfile{N: c.Interactive.N, R: c.Interactive.R, P: c.Interactive.P}
	}
	if c.FileEncryption != nil {
		config.FileEncryption = ScryptProfile{N: c.FileEncryption.N, R: c.FileEncryption.R, P: c.FileEncryption.P}
	}
}
