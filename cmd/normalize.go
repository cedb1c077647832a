package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pakarguru/modulajar/internal/mdtable"
	"github.com/pakarguru/modulajar/internal/ui/theme"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Repair markdown tables in model text",
	Long: `Read text from a file or stdin, repair its markdown tables and print the
result. LaTeX spans are left untouched. With --json the input is a JSON
string or a {"headers": [...], "rows": [[...]]} table object.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if len(args) == 1 && args[0] != "-" {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		text := string(data)
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			var c mdtable.Content
			if err := json.Unmarshal(data, &c); err != nil {
				return fmt.Errorf("decode content: %w", err)
			}
			text = c.Markdown()
		}

		out := mdtable.Normalize(text)
		fmt.Println(out)

		if summary, _ := cmd.Flags().GetBool("summary"); summary {
			var tables, lines int
			for _, seg := range mdtable.Split(out) {
				if seg.Kind == mdtable.SegmentTable {
					tables++
				} else {
					lines += len(seg.Lines)
				}
			}
			fmt.Fprintln(os.Stderr, theme.Hint.Render(fmt.Sprintf("%d tabel, %d baris teks", tables, lines)))
		}
		return nil
	},
}

func init() {
	normalizeCmd.Flags().Bool("json", false, "Input is JSON content (string or table object)")
	normalizeCmd.Flags().Bool("summary", false, "Print the number of tables and text lines to stderr")
}
