package lessonplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pakarguru/modulajar/internal/llm"
	"github.com/pakarguru/modulajar/internal/store"
)

// ErrInvalidInput is returned before any model call when the input cannot
// produce a usable prompt.
var ErrInvalidInput = errors.New("invalid input")

// Service generates lesson plans and their attachments.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
}

// NewService creates a generation service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg, log: zap.L().Named("lessonplan")}
}

// generate sends one prompt and decodes the JSON answer into out.
func (s *Service) generate(ctx context.Context, purpose, system, user string, schema *llm.Schema, out any) error {
	ctx = llm.WithPurpose(ctx, purpose)

	req := llm.Request{
		System:      system,
		Prompt:      user,
		Schema:      schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("%s generation: %w", purpose, err)
	}

	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("parse %s response: %w", purpose, &llm.ErrInvalidResponse{Err: err})
	}

	s.log.Info("generated",
		zap.String("purpose", purpose),
		zap.String("model", resp.Model),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)
	return nil
}

// GeneratePlan generates the core lesson plan. The approval block and any
// identity fields the model left blank come from the input.
func (s *Service) GeneratePlan(ctx context.Context, school SchoolIdentity, lesson LessonIdentity) (*Plan, error) {
	if strings.TrimSpace(lesson.Subject) == "" || strings.TrimSpace(lesson.Topic) == "" {
		return nil, fmt.Errorf("%w: subject and topic are required", ErrInvalidInput)
	}

	var plan Plan
	err := s.generate(ctx, PurposePlan, planSystemPrompt,
		buildPlanUserMessage(school, lesson), PlanSchema, &plan)
	if err != nil {
		return nil, err
	}

	fillIdentity(&plan.IdentitySection, school, lesson)
	plan.Approval = Approval{
		Location:      school.Location,
		Date:          school.Date,
		AuthorName:    school.AuthorName,
		AuthorNip:     school.AuthorNip,
		PrincipalName: school.PrincipalName,
		PrincipalNip:  school.PrincipalNip,
	}
	return &plan, nil
}

func fillIdentity(id *IdentitySection, school SchoolIdentity, lesson LessonIdentity) {
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&id.SchoolName, school.SchoolName)
	fill(&id.Subject, lesson.Subject)
	fill(&id.Grade, lesson.Grade)
	fill(&id.Semester, lesson.Semester)
	fill(&id.TimeAllocation, lesson.TimeAllocation)
	fill(&id.MeetingCount, lesson.MeetingCount)
	fill(&id.Topic, lesson.Topic)
}

func requirePlan(plan *Plan) error {
	if plan == nil || plan.IdentitySection.Topic == "" {
		return fmt.Errorf("%w: a generated plan is required", ErrInvalidInput)
	}
	return nil
}

// GenerateMaterials generates the reading material for plan.
func (s *Service) GenerateMaterials(ctx context.Context, plan *Plan) (*Materials, error) {
	if err := requirePlan(plan); err != nil {
		return nil, err
	}
	var out Materials
	err := s.generate(ctx, PurposeMaterials, planSystemPrompt,
		buildMaterialsUserMessage(plan), MaterialsSchema, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateLKPD generates the student worksheet for plan.
func (s *Service) GenerateLKPD(ctx context.Context, plan *Plan) (*LKPD, error) {
	if err := requirePlan(plan); err != nil {
		return nil, err
	}
	var out LKPD
	err := s.generate(ctx, PurposeLKPD, planSystemPrompt,
		buildLKPDUserMessage(plan), LKPDSchema, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateAssessment generates the assessment for plan.
func (s *Service) GenerateAssessment(ctx context.Context, plan *Plan) (*Assessment, error) {
	if err := requirePlan(plan); err != nil {
		return nil, err
	}
	var out Assessment
	err := s.generate(ctx, PurposeAssessment, assessmentSystemPrompt,
		buildAssessmentUserMessage(plan), AssessmentSchema, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateQuestionConfig checks a question bank request.
func ValidateQuestionConfig(cfg QuestionBankConfig) error {
	if cfg.Count < 1 {
		return fmt.Errorf("%w: question count must be at least 1", ErrInvalidInput)
	}
	if len(cfg.Types) == 0 {
		return fmt.Errorf("%w: at least one question type is required", ErrInvalidInput)
	}
	for _, t := range cfg.Types {
		if !slices.Contains(QuestionTypes, t) {
			return fmt.Errorf("%w: unknown question type %q", ErrInvalidInput, t)
		}
	}
	return nil
}

// GenerateQuestionBank generates questions for plan. The config used is
// stored with the result.
func (s *Service) GenerateQuestionBank(ctx context.Context, plan *Plan, cfg QuestionBankConfig) (*QuestionBank, error) {
	if err := requirePlan(plan); err != nil {
		return nil, err
	}
	if err := ValidateQuestionConfig(cfg); err != nil {
		return nil, err
	}
	var out QuestionBank
	err := s.generate(ctx, PurposeQuestionBank, planSystemPrompt,
		buildQuestionBankUserMessage(plan, cfg), QuestionBankSchema, &out)
	if err != nil {
		return nil, err
	}
	out.Config = &cfg
	return &out, nil
}

// Selection picks the attachments GenerateAll produces. A nil QuestionBank
// skips the question bank.
type Selection struct {
	Materials    bool
	LKPD         bool
	Assessment   bool
	QuestionBank *QuestionBankConfig
}

// GenerateAll generates the plan and then the selected attachments
// concurrently. A failed attachment does not discard the others: the plan is
// returned with whatever succeeded, together with the joined errors. When
// the plan itself fails the result is nil.
func (s *Service) GenerateAll(ctx context.Context, school SchoolIdentity, lesson LessonIdentity, sel Selection) (*Plan, error) {
	if sel.QuestionBank != nil {
		if err := ValidateQuestionConfig(*sel.QuestionBank); err != nil {
			return nil, err
		}
	}

	plan, err := s.GeneratePlan(ctx, school, lesson)
	if err != nil {
		return nil, err
	}

	// Each goroutine owns one field of plan and one slot of errs. The group
	// has no context, so one failure does not cancel the other attachments;
	// Wait reports that something failed and errs says what.
	var (
		g    errgroup.Group
		errs [4]error
	)
	attach := func(slot int, gen func() error) {
		g.Go(func() error {
			errs[slot] = gen()
			return errs[slot]
		})
	}
	if sel.Materials {
		attach(0, func() (err error) {
			plan.Materials, err = s.GenerateMaterials(ctx, plan)
			return err
		})
	}
	if sel.LKPD {
		attach(1, func() (err error) {
			plan.LKPD, err = s.GenerateLKPD(ctx, plan)
			return err
		})
	}
	if sel.Assessment {
		attach(2, func() (err error) {
			plan.Assessment, err = s.GenerateAssessment(ctx, plan)
			return err
		})
	}
	if sel.QuestionBank != nil {
		attach(3, func() (err error) {
			plan.QuestionBank, err = s.GenerateQuestionBank(ctx, plan, *sel.QuestionBank)
			return err
		})
	}
	if g.Wait() != nil {
		err := errors.Join(errs[:]...)
		s.log.Warn("some attachments failed", zap.Error(err))
		return plan, err
	}
	return plan, nil
}

// Features reports which parts of the plan are present.
func (p *Plan) Features() store.Features {
	return store.Features{
		RPP:          len(p.LearningExperience) > 0 || p.IdentitySection.Topic != "",
		Materials:    p.Materials != nil,
		LKPD:         p.LKPD != nil,
		Assessment:   p.Assessment != nil,
		QuestionBank: p.QuestionBank != nil,
	}
}

// IsMath reports whether the plan's subject keeps LaTeX formulas.
func (p *Plan) IsMath() bool {
	return IsMathSubject(p.IdentitySection.Subject)
}
