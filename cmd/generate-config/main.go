package main

import (
	"os"

	"gopkg.in/yaml.v2"

	"fairtable-server/internal/config"
)

// prints the default configuration as YAML
func main() {
	if err := yaml.NewEncoder(os.Stdout).Encode(config.DefaultConfig()); err != nil {
		panic(err)
	}
}
