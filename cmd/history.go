package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pakarguru/modulajar/internal/store"
	"github.com/pakarguru/modulajar/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved generations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved generations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		items, err := st.HistoryRepo().List(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("Belum ada riwayat.")
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{
				it.ID,
				it.CreatedAt.Local().Format("2006-01-02 15:04"),
				truncate(it.Subject, 20),
				truncate(it.Grade, 16),
				truncate(it.Topic, 40),
				featureTags(it.Features),
			})
		}
		fmt.Println(theme.Table([]string{"ID", "Tanggal", "Mapel", "Kelas", "Topik", ""}, rows))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the saved plan as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		item, err := st.HistoryRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("history item %s not found", args[0])
		}

		if input, _ := cmd.Flags().GetBool("input"); input {
			return printIndented(item.InputData)
		}
		return printIndented(item.FullData)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.HistoryRepo().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(theme.Ok.Render("Dihapus: " + args[0]))
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "Number of items to show")
	historyShowCmd.Flags().Bool("input", false, "Print the form input instead of the plan")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

func featureTags(f store.Features) string {
	tags := []struct {
		on   bool
		name string
	}{
		{f.RPP, "RPP"},
		{f.Materials, "Materi"},
		{f.LKPD, "LKPD"},
		{f.Assessment, "Asesmen"},
		{f.QuestionBank, "Soal"},
	}
	var out string
	for _, t := range tags {
		if t.on {
			out += "[" + t.name + "]"
		}
	}
	return theme.Hint.Render(out)
}

func printIndented(raw json.RawMessage) error {
	if len(raw) == 0 {
		fmt.Println("{}")
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("format json: %w", err)
	}
	fmt.Println(buf.String())
	return nil
}
