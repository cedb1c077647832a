package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/llm"
	"github.com/pakarguru/modulajar/internal/preview"
	"github.com/pakarguru/modulajar/internal/store"
	"github.com/pakarguru/modulajar/internal/ui/theme"
)

// generateInput is the form a teacher fills in. The draft stores it between
// attempts.
type generateInput struct {
	School       lessonplan.SchoolIdentity      `yaml:"school" json:"school"`
	Lesson       lessonplan.LessonIdentity      `yaml:"lesson" json:"lesson"`
	Materials    bool                           `yaml:"materials" json:"materials"`
	LKPD         bool                           `yaml:"lkpd" json:"lkpd"`
	Assessment   bool                           `yaml:"assessment" json:"assessment"`
	QuestionBank *lessonplan.QuestionBankConfig `yaml:"questionBank" json:"questionBank,omitempty"`
}

func (in generateInput) selection() lessonplan.Selection {
	return lessonplan.Selection{
		Materials:    in.Materials,
		LKPD:         in.LKPD,
		Assessment:   in.Assessment,
		QuestionBank: in.QuestionBank,
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a Modul Ajar with the configured LLM",
	Long: `Generate a lesson plan and the selected attachments.

The form can come from a YAML or JSON file (--input), from the saved draft
(--resume) or from flags; later sources override earlier ones. The form is
saved as a draft before the model is called and cleared after a successful
run, so a failed generation can be retried with --resume.`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringP("input", "i", "", "YAML or JSON file with school and lesson fields")
	f.Bool("resume", false, "Start from the saved draft")
	f.String("subject", "", "Mata pelajaran")
	f.String("topic", "", "Topik / materi pokok")
	f.String("grade", "", "Kelas / fase")
	f.Bool("materials", false, "Also generate the reading material")
	f.Bool("lkpd", false, "Also generate the worksheet (LKPD)")
	f.Bool("assessment", false, "Also generate the assessment attachment")
	f.Bool("all", false, "Generate every attachment")
	f.Int("questions", 0, "Number of questions for the question bank (0 skips it)")
	f.StringSlice("question-types", lessonplan.QuestionTypes, "Question types for the question bank")
	f.String("question-level", string(lessonplan.LevelMixed), "Question level: LOTS, HOTS or CAMPURAN")
	f.StringSliceP("out", "o", nil, "Write the result to files (.json, .html or .docx)")
	f.String("tab", string(preview.TabAll), "Sections shown in .html output")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	in, err := loadGenerateInput(cmd, st.DraftRepo())
	if err != nil {
		return err
	}
	tabName, _ := cmd.Flags().GetString("tab")
	tab, err := preview.ParseTab(tabName)
	if err != nil {
		return err
	}
	if in.QuestionBank != nil {
		if err := lessonplan.ValidateQuestionConfig(*in.QuestionBank); err != nil {
			return err
		}
	}

	draft, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := st.DraftRepo().Save(ctx, draft); err != nil {
		return err
	}

	svc, err := newService(ctx, st.EventRepo())
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, theme.Hint.Render("Membuat modul ajar, mohon tunggu..."))
	plan, genErr := svc.GenerateAll(ctx, in.School, in.Lesson, in.selection())
	if plan == nil {
		return fmt.Errorf("%s: %w", llm.UserMessage(genErr), genErr)
	}
	if genErr != nil {
		fmt.Fprintln(os.Stderr, theme.Failed.Render("Sebagian lampiran gagal dibuat: "+llm.UserMessage(genErr)))
		logger.Warn("partial generation", zap.Error(genErr))
	}

	if err := st.DraftRepo().Clear(ctx); err != nil {
		logger.Warn("clear draft", zap.Error(err))
	}
	id, err := saveHistory(cmd, st.HistoryRepo(), plan, draft)
	if err != nil {
		logger.Warn("save history", zap.Error(err))
	}

	outs, _ := cmd.Flags().GetStringSlice("out")
	if len(outs) == 0 {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	for _, path := range outs {
		if err := writePlanFile(ctx, path, plan, in.Lesson, tab); err != nil {
			return err
		}
	}
	printPlanSummary(plan, id, outs)
	return nil
}

// loadGenerateInput layers config defaults, the draft, the input file and
// flags, in that order.
func loadGenerateInput(cmd *cobra.Command, drafts store.DraftRepo) (generateInput, error) {
	ctx := cmd.Context()
	in := generateInput{
		School: cfg.Defaults.School,
		Lesson: lessonplan.DefaultLessonIdentity(),
	}

	if resume, _ := cmd.Flags().GetBool("resume"); resume {
		d, err := drafts.Load(ctx)
		if err != nil {
			return in, err
		}
		if d == nil {
			return in, fmt.Errorf("no saved draft to resume")
		}
		if err := json.Unmarshal(d.Data, &in); err != nil {
			return in, fmt.Errorf("decode draft: %w", err)
		}
	}

	if path, _ := cmd.Flags().GetString("input"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return in, fmt.Errorf("read input: %w", err)
		}
		if err := yaml.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("parse input %s: %w", path, err)
		}
	}

	f := cmd.Flags()
	setString := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	setString("subject", &in.Lesson.Subject)
	setString("topic", &in.Lesson.Topic)
	setString("grade", &in.Lesson.Grade)

	all, _ := f.GetBool("all")
	setBool := func(name string, dst *bool) {
		if all {
			*dst = true
		} else if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}
	setBool("materials", &in.Materials)
	setBool("lkpd", &in.LKPD)
	setBool("assessment", &in.Assessment)

	count, _ := f.GetInt("questions")
	if all && count == 0 && in.QuestionBank == nil {
		count = 10
	}
	if count > 0 {
		types, _ := f.GetStringSlice("question-types")
		level, _ := f.GetString("question-level")
		in.QuestionBank = &lessonplan.QuestionBankConfig{
			Count: count,
			Level: lessonplan.QuestionLevel(level),
			Types: types,
		}
	}

	if in.School.Date == "" {
		in.School.Date = lessonplan.FormatDate(time.Now())
	}
	return in, nil
}

func saveHistory(cmd *cobra.Command, repo store.HistoryRepo, plan *lessonplan.Plan, input json.RawMessage) (string, error) {
	full, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("encode plan: %w", err)
	}
	item := &store.HistoryItem{
		Subject:   plan.IdentitySection.Subject,
		Grade:     plan.IdentitySection.Grade,
		Topic:     plan.IdentitySection.Topic,
		Features:  plan.Features(),
		FullData:  full,
		InputData: input,
	}
	if err := repo.Save(cmd.Context(), item, cfg.Store.HistoryKeep); err != nil {
		return "", err
	}
	return item.ID, nil
}

func printPlanSummary(plan *lessonplan.Plan, id string, outs []string) {
	f := plan.Features()
	fmt.Println(theme.Title.Render("Modul Ajar: " + plan.IdentitySection.Topic))
	fmt.Printf("%s RPP  %s Materi  %s LKPD  %s Asesmen  %s Bank Soal\n",
		theme.Mark(f.RPP), theme.Mark(f.Materials), theme.Mark(f.LKPD),
		theme.Mark(f.Assessment), theme.Mark(f.QuestionBank))
	if id != "" {
		fmt.Printf("%s %s\n", theme.Label.Render("Riwayat:"), id)
	}
	for _, o := range outs {
		fmt.Printf("%s %s\n", theme.Label.Render("Disimpan:"), o)
	}
}
