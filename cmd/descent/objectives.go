package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/descent/internal/minimize/objectives"
)

var objectivesCmd = &cobra.Command{
	Use:   "objectives",
	Short: "List the registered objective functions",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range objectives.Names() {
			obj, err := objectives.Lookup(name)
			if err != nil {
				continue
			}
			fmt.Printf("%-18s %s\n", name, obj.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(objectivesCmd)
}
