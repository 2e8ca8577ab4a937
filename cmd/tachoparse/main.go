package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/way-platform/tachoparse"
)

func main() {
	if err := fang.Execute(context.Background(), newRootCommand()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tachoparse",
		Short: "Inspect EU smart-tachograph download files",
	}
	cmd.AddCommand(newInspectCommand())
	return cmd
}

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file1> [file2] [...]",
		Short: "Parse download files and print their summary",
		Args:  cobra.MinimumNArgs(1),
	}
	asJSON := cmd.Flags().Bool("json", false, "print the Summary as JSON instead of a human-readable tree")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		for _, filename := range args {
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("error reading %s: %w", filename, err)
			}
			summary := tachoparse.ParseSummary(data)
			if *asJSON {
				encoded, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return fmt.Errorf("error encoding %s: %w", filename, err)
				}
				fmt.Println(string(encoded))
				continue
			}
			printSummaryTree(filename, summary)
		}
		return nil
	}
	return cmd
}

func printSummaryTree(filename string, summary tachoparse.Summary) {
	fmt.Printf("%s\n", filename)
	fmt.Printf("  type:       %s\n", summary.Header.DetectedType)
	fmt.Printf("  generation: %s\n", summary.Header.DetectedGeneration)
	if !summary.Header.IsValid {
		fmt.Printf("  invalid:    %s\n", summary.Header.InvalidReason)
		return
	}
	for _, part := range summary.Parts {
		if part.Note != "" {
			fmt.Printf("  %-20s %-14s %s\n", part.Name, part.Status, part.Note)
		} else {
			fmt.Printf("  %-20s %-14s\n", part.Name, part.Status)
		}
	}
}
