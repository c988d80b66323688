package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var faqCmd = &cobra.Command{
	Use:   "faq",
	Short: "Manage FAQ records",
}

var faqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all FAQ records",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		records := store.Load(context.Background())
		if len(records) == 0 {
			fmt.Println("No FAQ records.")
			return nil
		}

		bold := color.New(color.Bold)
		dim := color.New(color.Faint)
		for _, r := range records {
			bold.Printf("[%s] %s\n", r.Category, r.Question)
			fmt.Printf("  %s\n", r.Answer)
			dim.Printf("  id=%s keywords=%q\n", r.ID, r.Keywords)
		}
		fmt.Printf("\n%d record(s)\n", len(records))
		return nil
	},
}

var (
	addQuestion string
	addAnswer   string
	addCategory string
)

var faqAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a FAQ record",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		record, err := store.Add(context.Background(), addQuestion, addAnswer, addCategory)
		if err != nil {
			return err
		}
		color.Green("Created FAQ %s", record.ID)
		return nil
	},
}

var importClear bool

var faqImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Bulk-import FAQ records from CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		imported, err := store.ImportCSV(context.Background(), f, importClear)
		if err != nil {
			return err
		}
		color.Green("Imported %d record(s)", imported)
		return nil
	},
}

func init() {
	faqAddCmd.Flags().StringVarP(&addQuestion, "question", "q", "", "FAQ question")
	faqAddCmd.Flags().StringVarP(&addAnswer, "answer", "a", "", "FAQ answer")
	faqAddCmd.Flags().StringVarP(&addCategory, "category", "c", "", "FAQ category")
	faqAddCmd.MarkFlagRequired("question")
	faqAddCmd.MarkFlagRequired("answer")

	faqImportCmd.Flags().BoolVar(&importClear, "clear", false, "clear existing records before import")

	faqCmd.AddCommand(faqListCmd)
	faqCmd.AddCommand(faqAddCmd)
	faqCmd.AddCommand(faqImportCmd)
}
