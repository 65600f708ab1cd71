package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	skematic "github.com/kharioki/skematic"
	"github.com/kharioki/skematic/openapi"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Usage: %s validate <file|->\n", os.Args[0])
			os.Exit(1)
		}
		filename := os.Args[2]
		if err := validateOrder(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Validation passed!")

	case "schema":
		if err := showSchema(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show schema: %v\n", err)
			os.Exit(1)
		}

	case "demo":
		if err := runDemo(); err != nil {
			fmt.Fprintf(os.Stderr, "Demo failed: %v\n", err)
			os.Exit(1)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`skematic OpenAPI Validator Sample

Usage: %s <command> [args...]

Commands:
  validate <file|->     Validate an Order document from file or stdin
  schema                Show the JSON Schema derived from the OpenAPI component
  demo                  Run validation demo with the bundled sample files

Examples:
  %s validate valid-order.yaml
  %s validate invalid-order.yaml
  cat order.yaml | %s validate -
  %s demo

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

// loadOrderSchema compiles components/schemas/Order from the bundled OpenAPI
// document. Undeclared properties are rejected unless the document says
// otherwise.
func loadOrderSchema() (skematic.Schema[map[string]any], error) {
	doc, err := os.ReadFile("api.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}

	schema, diag, err := openapi.ImportComponentYAML(doc, "Order", openapi.Options{
		Unknown: openapi.UnknownStrict,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import component: %w", err)
	}

	if diag.HasWarnings() {
		for _, warning := range diag.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		}
	}

	return schema, nil
}

func validateOrder(filename string) error {
	ctx := context.Background()

	schema, err := loadOrderSchema()
	if err != nil {
		return err
	}

	var reader io.Reader
	if filename == "-" {
		reader = os.Stdin
		fmt.Fprintf(os.Stderr, "reading from stdin...\n")
	} else {
		file, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", filename, err)
		}
		defer file.Close()
		reader = file
		fmt.Fprintf(os.Stderr, "validating %s...\n", filename)
	}

	// Duplicate keys are rejected outright; all issues are collected so one
	// run surfaces every problem in the document.
	opt := skematic.ParseOpt{
		Strictness: skematic.Strictness{OnDuplicateKey: skematic.Error},
		FailFast:   false,
	}

	result, err := skematic.ParseFrom(ctx, schema, skematic.YAMLReader(reader), opt)
	if err != nil {
		return reportIssues(err)
	}

	if id, ok := result["id"].(string); ok {
		fmt.Fprintf(os.Stderr, "  order: %s\n", id)
	}
	if status, ok := result["status"].(string); ok {
		fmt.Fprintf(os.Stderr, "  status: %s\n", status)
	}

	return nil
}

func reportIssues(err error) error {
	if issues, ok := skematic.AsIssues(err); ok {
		fmt.Fprintf(os.Stderr, "❌ Validation failed with %d issue(s):\n\n", len(issues))
		for i, issue := range issues {
			fmt.Fprintf(os.Stderr, "  %d. %s at %s\n", i+1, issue.Message, issue.Path)
			fmt.Fprintf(os.Stderr, "     code: %s\n", issue.Code)
			if issue.Hint != "" {
				fmt.Fprintf(os.Stderr, "     hint: %s\n", issue.Hint)
			}
			fmt.Fprintln(os.Stderr)
		}
		return fmt.Errorf("validation failed with %d issue(s)", len(issues))
	}
	return fmt.Errorf("validation error: %w", err)
}

func showSchema() error {
	schema, err := loadOrderSchema()
	if err != nil {
		return err
	}

	jsonSchema, err := schema.JSONSchema()
	if err != nil {
		return fmt.Errorf("failed to generate JSON schema: %w", err)
	}

	fmt.Println("Derived JSON Schema for Order:")
	fmt.Println()

	// YAML output reads better on a terminal than indented JSON.
	yamlData, err := yaml.Marshal(jsonSchema)
	if err != nil {
		return fmt.Errorf("failed to marshal to YAML: %w", err)
	}

	fmt.Print(string(yamlData))
	return nil
}

func runDemo() error {
	fmt.Println("skematic OpenAPI Validation Demo")
	fmt.Println("================================")
	fmt.Println()

	fmt.Println("1. Valid Order document:")
	fmt.Println("------------------------")
	if err := validateOrder("valid-order.yaml"); err != nil {
		return fmt.Errorf("valid order test failed: %w", err)
	}
	fmt.Println()

	fmt.Println("2. Invalid Order document:")
	fmt.Println("--------------------------")
	if err := validateOrder("invalid-order.yaml"); err != nil {
		fmt.Fprintf(os.Stderr, "expected validation failure: %v\n", err)
	}
	fmt.Println()

	fmt.Println("3. Derived JSON Schema:")
	fmt.Println("-----------------------")
	if err := showSchema(); err != nil {
		return fmt.Errorf("schema generation failed: %w", err)
	}

	fmt.Println()
	fmt.Println("✨ Demo completed!")

	return nil
}

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
