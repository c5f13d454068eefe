package main

import (
	"fmt"
	"os"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/config"
	"gopkg.in/yaml.v3"
)

func main() {
	// Create a config with defaults applied
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	header := "# quill configuration example\n" +
		"# Copy this file to config.yaml and customize as needed.\n" +
		"# Values can also be overridden with QUILL_* environment variables.\n\n"
	output := header + string(yamlData)

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(output)
		return
	}

	if err := os.WriteFile(outputFile, []byte(output), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
