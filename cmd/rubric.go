package cmd

import (
	"fmt"

	"github.com/iksnae/eval-session/internal"
	"github.com/spf13/cobra"
)

var rubricCmd = &cobra.Command{
	Use:   "rubric",
	Short: "Show the rating dimensions and their rubrics",
	Long: `Show the four quality dimensions, their key questions, and the 0-2 rubric
labels. Rate each dimension independently and use the full scale.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, d := range internal.Dimensions {
			fmt.Println(headerStyle.Render(d.Name))
			fmt.Println(idStyle.Render(string(d.Key)))
			fmt.Println(dimStyle.Render(d.KeyQuestion))
			for score := internal.MinScore; score <= internal.MaxScore; score++ {
				fmt.Printf("  %d - %s\n", score, d.RubricLabels[score])
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(rubricCmd)
}
