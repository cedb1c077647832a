package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/llm"
	"github.com/pakarguru/modulajar/internal/store"
	"github.com/pakarguru/modulajar/internal/ui/theme"
)

const stampLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls and check the API key",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded model calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var opts store.QueryOpts
		opts.Limit, _ = f.GetInt("limit")
		opts.Purpose, _ = f.GetString("purpose")
		opts.Before, _ = f.GetInt64("before")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("list llm events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println(theme.Hint.Render("Belum ada panggilan model."))
			return nil
		}

		rows := make([][]string, 0, len(events))
		for _, e := range events {
			rows = append(rows, []string{
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format(stampLayout),
				e.Purpose,
				truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				theme.Mark(e.Success),
			})
		}
		fmt.Println(theme.Table([]string{"ID", "Waktu", "Tujuan", "Model", "Masuk", "Keluar", "ms", ""}, rows, 0, 4, 5, 6))
		if last := events[len(events)-1]; len(events) == opts.Limit {
			fmt.Println(theme.Hint.Render(fmt.Sprintf("Lanjut: modulajar llm list --before %d", last.Sequence)))
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and answer of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("event id %q is not a number", args[0])
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		e, err := st.EventRepo().GetLLMEvent(cmd.Context(), id)
		switch {
		case err != nil:
			return fmt.Errorf("load llm event %d: %w", id, err)
		case e == nil:
			return fmt.Errorf("no llm event with id %d", id)
		}

		fields := [][2]string{
			{"ID", strconv.Itoa(e.ID)},
			{"Waktu", e.Timestamp.Local().Format(stampLayout)},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Tujuan", e.Purpose},
			{"Token", fmt.Sprintf("%d masuk, %d keluar", e.InputTokens, e.OutputTokens)},
			{"Durasi", fmt.Sprintf("%d ms", e.LatencyMs)},
			{"Hasil", theme.Mark(e.Success)},
		}
		if e.ErrorMessage != "" {
			fields = append(fields,
				[2]string{"Galat", theme.Failed.Render(e.ErrorMessage)},
				[2]string{"Pesan", llm.Classify(fmt.Errorf("%s", e.ErrorMessage)).UserMessage()},
			)
		}
		for _, kv := range fields {
			fmt.Printf("%s %s\n", theme.Label.Render(fmt.Sprintf("%-9s", kv[0]+":")), kv[1])
		}

		for _, part := range [][2]string{{"PERMINTAAN", e.RequestBody}, {"JAWABAN", e.ResponseBody}} {
			fmt.Printf("\n%s\n%s\n", theme.Title.Render(part[0]), theme.Rule(60))
			if part[1] == "" {
				fmt.Println(theme.Hint.Render("(kosong)"))
				continue
			}
			fmt.Println(part[1])
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage per purpose and the estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		events := st.EventRepo()

		byPurpose, err := events.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return fmt.Errorf("usage by purpose: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println(theme.Hint.Render("Belum ada pemakaian token."))
			return nil
		}

		var sum store.PurposeUsage
		rows := make([][]string, 0, len(byPurpose)+1)
		for _, u := range byPurpose {
			rows = append(rows, usageRow(u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, strconv.FormatInt(u.AvgLatencyMs, 10)))
			sum.Calls += u.Calls
			sum.InputTokens += u.InputTokens
			sum.OutputTokens += u.OutputTokens
		}
		rows = append(rows, usageRow("TOTAL", sum.Calls, sum.InputTokens, sum.OutputTokens, ""))
		fmt.Println(theme.Title.Render("Pemakaian per tujuan"))
		fmt.Println(theme.Table([]string{"Tujuan", "Panggilan", "Masuk", "Keluar", "Total", "Rata ms"}, rows, 1, 2, 3, 4, 5))

		byModel, err := events.LLMUsageByModel(cmd.Context())
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}
		if len(byModel) == 0 {
			return nil
		}

		var (
			total   float64
			unknown []string
		)
		rows = rows[:0]
		for _, u := range byModel {
			price := "?"
			if c := llm.LookupCost(u.Model); c != nil {
				usd := c.Cost(u.InputTokens, u.OutputTokens)
				total += usd
				price = formatCost(usd)
			} else {
				unknown = append(unknown, u.Model)
			}
			rows = append(rows, []string{truncate(u.Model, 32), strconv.Itoa(u.Calls),
				strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), price})
		}
		totalLabel := "TOTAL"
		if len(unknown) > 0 {
			totalLabel += " (sebagian)"
		}
		rows = append(rows, []string{totalLabel, "", "", "", formatCost(total)})

		fmt.Println()
		fmt.Println(theme.Title.Render("Perkiraan biaya (USD)"))
		fmt.Println(theme.Table([]string{"Model", "Panggilan", "Masuk", "Keluar", "Biaya"}, rows, 1, 2, 3, 4))
		if len(unknown) > 0 {
			fmt.Println(theme.Hint.Render("Harga tidak diketahui: " + strings.Join(unknown, ", ")))
		}
		return nil
	},
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the configured API key with a one-token request",
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := llm.CheckKey(cmd.Context(), cfg.LLMConfig())
		msg := llm.PingMessage(model, err)
		if err != nil {
			fmt.Println(theme.Failed.Render(msg))
			return fmt.Errorf("key check failed: %w", err)
		}
		fmt.Println(theme.Ok.Render(msg))
		return nil
	},
}

func usageRow(label string, calls, in, out int, latency string) []string {
	return []string{label, strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), strconv.Itoa(in + out), latency}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

// formatCost keeps four decimals for sub-cent amounts.
func formatCost(usd float64) string {
	if usd > 0 && usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	f := llmListCmd.Flags()
	f.IntP("limit", "n", 20, "Number of calls to show")
	f.Int64("before", 0, "Only show calls older than this sequence number")
	f.StringP("purpose", "p", "", "Filter by purpose: "+strings.Join([]string{
		lessonplan.PurposePlan, lessonplan.PurposeMaterials, lessonplan.PurposeLKPD,
		lessonplan.PurposeAssessment, lessonplan.PurposeQuestionBank,
	}, ", "))

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd, llmCheckCmd)
}
