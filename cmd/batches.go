package cmd

import (
	"fmt"

	"github.com/iksnae/eval-session/internal"
	"github.com/spf13/cobra"
)

var batchesCount int

var batchesCmd = &cobra.Command{
	Use:   "batches <base-dir>",
	Short: "List the batch folders under a base directory",
	Long: `Find the batch folders under a base directory, trying the layouts the
conversation generator produces (batch_1, batch1, folder_1, bare numbers).
When no numbered subfolder exists, the base directory itself is the single
batch.

Pass a printed path as --batch to the other commands.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folders := internal.DiscoverBatchFolders(args[0], batchesCount)

		fmt.Println(headerStyle.Render(fmt.Sprintf("Batch folders (%d)", len(folders))))
		for _, folder := range folders {
			store, err := internal.LoadStoreFromFolder(folder)
			if err != nil {
				fmt.Printf("  %s  %s\n", folder, dimStyle.Render("unreadable: "+err.Error()))
				continue
			}
			fmt.Printf("  %s  %s\n", folder,
				countStyle.Render(fmt.Sprintf("%d conversation(s)", store.Len())))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchesCmd)
	batchesCmd.Flags().IntVar(&batchesCount, "count", 10, "Highest batch number to look for")
}
