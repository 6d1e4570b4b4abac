// Command create-data-file builds a new space data file: a valid
// SpaceInfoPage, an index chain, and the requested number of
// synthesized data rows.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tinyspace/spaceengine/internal/space"
)

// schemaConfig is the optional --schema YAML file's shape. Only Name is
// read; the synthesized row schema (id int64, payload string) and its
// primary key are fixed by space.Create. A full field/type/pk/secondary-
// index schema would need space.Create itself to build rows and indexes
// from an arbitrary schema rather than the synthesized one, which is out
// of scope for this CLI.
type schemaConfig struct {
	Name string `yaml:"name"`
}

func main() {
	filename := flag.String("filename", "", "path to the data file to create")
	count := flag.Int("count", 0, "number of synthesized rows to write")
	schemaPath := flag.String("schema", "", "optional YAML file naming the space (name only; row schema is fixed)")
	flag.Parse()

	if *filename == "" {
		fmt.Fprintln(os.Stderr, "create-data-file: -filename is required")
		os.Exit(1)
	}

	name := "space"
	if *schemaPath != "" {
		b, err := os.ReadFile(*schemaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create-data-file: reading schema: %v\n", err)
			os.Exit(1)
		}
		var cfg schemaConfig
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "create-data-file: parsing schema: %v\n", err)
			os.Exit(1)
		}
		if cfg.Name != "" {
			name = cfg.Name
		}
	}

	if err := space.Create(*filename, *count, name); err != nil {
		fmt.Fprintf(os.Stderr, "create-data-file: %v\n", err)
		os.Exit(1)
	}
}
