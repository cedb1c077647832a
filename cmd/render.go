package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pakarguru/modulajar/internal/export"
	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/preview"
	"github.com/pakarguru/modulajar/internal/ui/theme"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a generated plan as HTML or DOCX",
}

var renderHTMLCmd = &cobra.Command{
	Use:   "html [plan.json]",
	Short: "Render the printable HTML preview",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, lesson, err := loadPlan(cmd, args)
		if err != nil {
			return err
		}
		tabName, _ := cmd.Flags().GetString("tab")
		tab, err := preview.ParseTab(tabName)
		if err != nil {
			return err
		}
		settings, err := documentSettings(cmd)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" || out == "-" {
			return preview.Render(cmd.Context(), os.Stdout, plan, lesson, preview.Options{
				Tab: tab, Settings: settings, Logger: logger,
			})
		}
		var buf bytes.Buffer
		if err := preview.Render(cmd.Context(), &buf, plan, lesson, preview.Options{
			Tab: tab, Settings: settings, Logger: logger,
		}); err != nil {
			return err
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", theme.Label.Render("Disimpan:"), out)
		return nil
	},
}

var renderDOCXCmd = &cobra.Command{
	Use:   "docx [plan.json]",
	Short: "Export the plan as a Word document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, _, err := loadPlan(cmd, args)
		if err != nil {
			return err
		}
		settings, err := documentSettings(cmd)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, plan, settings); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		name := export.FileName(plan)

		if upload, _ := cmd.Flags().GetBool("upload"); upload {
			if !cfg.Export.S3Enabled() {
				return fmt.Errorf("upload requested but export.s3_endpoint and export.s3_bucket are not configured")
			}
			client, err := export.NewS3Client(cmd.Context(), cfg.Export)
			if err != nil {
				return err
			}
			link, err := export.NewUploader(client, cfg.Export, logger).Upload(cmd.Context(), name, buf.Bytes())
			if err != nil {
				return err
			}
			fmt.Println(link)
			return nil
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = name
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", theme.Label.Render("Disimpan:"), out)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{renderHTMLCmd, renderDOCXCmd} {
		c.Flags().String("history", "", "Render a saved history item instead of a file")
		c.Flags().StringP("out", "o", "", "Output file")
		c.Flags().String("paper", "", "Paper size: A4 or LETTER (default from config)")
		c.Flags().String("font", "", "Font size: 10pt, 11pt or 12pt (default from config)")
	}
	renderHTMLCmd.Flags().String("tab", string(preview.TabAll), "Sections: SEMUA, RPP_PLUS, MATERI, LKPD or SOAL")
	renderDOCXCmd.Flags().Bool("upload", false, "Upload to the configured S3 bucket and print the link")

	renderCmd.AddCommand(renderHTMLCmd)
	renderCmd.AddCommand(renderDOCXCmd)
}

// loadPlan reads a plan from a JSON file, stdin ("-") or the history. The
// lesson identity is only known for history items.
func loadPlan(cmd *cobra.Command, args []string) (*lessonplan.Plan, lessonplan.LessonIdentity, error) {
	var lesson lessonplan.LessonIdentity
	id, _ := cmd.Flags().GetString("history")

	var data []byte
	switch {
	case id != "":
		st, err := openStore()
		if err != nil {
			return nil, lesson, err
		}
		defer st.Close()
		item, err := st.HistoryRepo().Get(cmd.Context(), id)
		if err != nil {
			return nil, lesson, err
		}
		if item == nil {
			return nil, lesson, fmt.Errorf("history item %s not found", id)
		}
		var in generateInput
		if len(item.InputData) > 0 && json.Unmarshal(item.InputData, &in) == nil {
			lesson = in.Lesson
		}
		data = item.FullData
	case len(args) == 1 && args[0] != "-":
		b, err := os.ReadFile(args[0])
		if err != nil {
			return nil, lesson, fmt.Errorf("read plan: %w", err)
		}
		data = b
	case len(args) == 1:
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(os.Stdin); err != nil {
			return nil, lesson, fmt.Errorf("read stdin: %w", err)
		}
		data = buf.Bytes()
	default:
		return nil, lesson, fmt.Errorf("give a plan file, \"-\" for stdin, or --history <id>")
	}

	var plan lessonplan.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, lesson, fmt.Errorf("decode plan: %w", err)
	}
	return &plan, lesson, nil
}

// documentSettings applies --paper and --font over the configured settings.
func documentSettings(cmd *cobra.Command) (lessonplan.DocumentSettings, error) {
	s := cfg.DocumentSettings()
	if p, _ := cmd.Flags().GetString("paper"); p != "" {
		switch ps := lessonplan.PaperSize(strings.ToUpper(p)); ps {
		case lessonplan.PaperA4, lessonplan.PaperLetter:
			s.PaperSize = ps
		default:
			return s, fmt.Errorf("unknown paper size %q", p)
		}
	}
	if f, _ := cmd.Flags().GetString("font"); f != "" {
		switch fs := lessonplan.FontSize(strings.ToLower(f)); fs {
		case lessonplan.Font10, lessonplan.Font11, lessonplan.Font12:
			s.FontSize = fs
		default:
			return s, fmt.Errorf("unknown font size %q", f)
		}
	}
	return s, nil
}

// writePlanFile writes plan in the format named by the file extension.
func writePlanFile(ctx context.Context, path string, plan *lessonplan.Plan, lesson lessonplan.LessonIdentity, tab preview.Tab) error {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		err = preview.Render(ctx, &buf, plan, lesson, preview.Options{
			Tab: tab, Settings: cfg.DocumentSettings(), Logger: logger,
		})
	case ".docx":
		err = export.Write(&buf, plan, cfg.DocumentSettings())
	case ".json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(plan)
	default:
		return fmt.Errorf("unsupported output %q: use .json, .html or .docx", path)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
