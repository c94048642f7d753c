// Package main is the entry point for the gRPC server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "warband-api",
	Short: "Warband API gRPC Server",
	Long:  `Warband API provides a gRPC interface for managing board-game sessions, weapon decks, inventory, and progression.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
