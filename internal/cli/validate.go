package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/animgraph/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Name     string                     `json:"name"`
	Nodes    int                        `json:"nodes"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Validate a graph document",
		Long: `Validate a graph document (YAML, JSON or CUE) without running it.

Checks node configs, references between nodes, view and event bindings,
and the input script. Cycles among node inputs or dependent edges are
reported as warnings; they do not fail validation.

Examples:
  animgraph validate header.yaml
  animgraph validate header.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	doc, err := loadDocument(formatter, path)
	if err != nil {
		return err
	}

	result := ValidationResult{
		Name:     doc.Name,
		Nodes:    len(doc.Nodes),
		Errors:   compiler.Validate(doc),
		Warnings: compiler.AnalyzeCycles(doc),
	}
	result.Valid = len(result.Errors) == 0

	if formatter.JSON() {
		if !result.Valid {
			if err := formatter.Failure(result.Errors[0].Code, result.Errors[0].Message, result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warning.Message)
	}
	if !result.Valid {
		fmt.Fprintln(w, "✗ Validation failed")
		fmt.Fprintln(w)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s %s: %s\n", e.Code, e.Field, e.Message)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	fmt.Fprintf(w, "✓ %s is valid (%d nodes)\n", displayName(doc, path), result.Nodes)
	return nil
}

func displayName(doc *compiler.Document, path string) string {
	if doc.Name != "" {
		return doc.Name
	}
	return path
}
