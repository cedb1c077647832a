package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pakarguru/modulajar/internal/docx"
	"github.com/pakarguru/modulajar/internal/export"
	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/llm"
	"github.com/pakarguru/modulajar/internal/mdtable"
	"github.com/pakarguru/modulajar/internal/preview"
	"github.com/pakarguru/modulajar/internal/store"
)

type normalizeRequest struct {
	// Text is free text or a {headers, rows} table object.
	Text mdtable.Content `json:"text"`
}

func (s *Server) normalize(c *gin.Context) {
	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	// Table objects are already well formed and skip the repair pass.
	out := req.Text.Markdown()
	if !req.Text.IsStructured() {
		out = mdtable.Normalize(out)
	}
	tables := 0
	for _, seg := range mdtable.Split(out) {
		if seg.Kind == mdtable.SegmentTable {
			tables++
		}
	}
	c.JSON(http.StatusOK, gin.H{"text": out, "tables": tables})
}

type renderRequest struct {
	Plan     *lessonplan.Plan             `json:"plan" binding:"required"`
	Lesson   lessonplan.LessonIdentity    `json:"lesson"`
	Tab      string                       `json:"tab"`
	Settings *lessonplan.DocumentSettings `json:"settings"`
}

func (s *Server) bindRender(c *gin.Context) (*renderRequest, lessonplan.DocumentSettings, bool) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: plan is required"})
		return nil, lessonplan.DocumentSettings{}, false
	}
	settings := s.deps.Settings
	if req.Settings != nil {
		if req.Settings.PaperSize != "" {
			settings.PaperSize = req.Settings.PaperSize
		}
		if req.Settings.FontSize != "" {
			settings.FontSize = req.Settings.FontSize
		}
	}
	return &req, settings, true
}

func (s *Server) renderHTML(c *gin.Context) {
	req, settings, ok := s.bindRender(c)
	if !ok {
		return
	}
	tab, err := preview.ParseTab(req.Tab)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	err = preview.Render(c.Request.Context(), &buf, req.Plan, req.Lesson, preview.Options{
		Tab:      tab,
		Settings: settings,
		Logger:   s.log,
	})
	if err != nil {
		s.log.Error("preview failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render preview"})
		return
	}
	documentsRendered.WithLabelValues("html").Inc()
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) renderDOCX(c *gin.Context) {
	req, settings, ok := s.bindRender(c)
	if !ok {
		return
	}
	upload, _ := strconv.ParseBool(c.Query("upload"))
	if upload && s.deps.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "document upload is not configured"})
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, req.Plan, settings); err != nil {
		s.log.Error("docx export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export document"})
		return
	}
	documentsRendered.WithLabelValues("docx").Inc()
	name := export.FileName(req.Plan)

	if upload {
		link, err := s.deps.Uploader.Upload(c.Request.Context(), name, buf.Bytes())
		if err != nil {
			s.log.Error("upload failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to upload document"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"fileName": name, "url": link})
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, docx.ContentType, buf.Bytes())
}

type generateRequest struct {
	School       *lessonplan.SchoolIdentity     `json:"school"`
	Lesson       lessonplan.LessonIdentity      `json:"lesson"`
	Materials    bool                           `json:"materials"`
	LKPD         bool                           `json:"lkpd"`
	Assessment   bool                           `json:"assessment"`
	QuestionBank *lessonplan.QuestionBankConfig `json:"questionBank"`
}

func (s *Server) generate(c *gin.Context) {
	if s.deps.Generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation is not configured"})
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	school := s.deps.School
	if req.School != nil {
		school = *req.School
	}

	plan, err := s.deps.Generator.GenerateAll(c.Request.Context(), school, req.Lesson, lessonplan.Selection{
		Materials:    req.Materials,
		LKPD:         req.LKPD,
		Assessment:   req.Assessment,
		QuestionBank: req.QuestionBank,
	})
	if plan == nil {
		generationsTotal.WithLabelValues("failed").Inc()
		if errors.Is(err, lessonplan.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		kind := llm.Classify(err)
		s.log.Warn("generation failed", zap.String("kind", kind.String()), zap.Error(err))
		c.JSON(statusFor(kind), gin.H{"error": kind.UserMessage(), "kind": kind.String()})
		return
	}

	resp := gin.H{"plan": plan}
	if err != nil {
		generationsTotal.WithLabelValues("partial").Inc()
		resp["warning"] = llm.UserMessage(err)
	} else {
		generationsTotal.WithLabelValues("ok").Inc()
	}
	if id, ok := s.saveHistory(c, plan, req); ok {
		resp["id"] = id
	}
	c.JSON(http.StatusOK, resp)
}

// saveHistory records a generated plan. Failures are logged only; the plan
// is still returned to the caller.
func (s *Server) saveHistory(c *gin.Context, plan *lessonplan.Plan, req generateRequest) (string, bool) {
	if s.deps.History == nil {
		return "", false
	}
	full, err := json.Marshal(plan)
	if err != nil {
		s.log.Warn("encode plan for history", zap.Error(err))
		return "", false
	}
	input, err := json.Marshal(req)
	if err != nil {
		s.log.Warn("encode input for history", zap.Error(err))
		return "", false
	}
	item := &store.HistoryItem{
		Subject:   plan.IdentitySection.Subject,
		Grade:     plan.IdentitySection.Grade,
		Topic:     plan.IdentitySection.Topic,
		Features:  plan.Features(),
		FullData:  full,
		InputData: input,
	}
	if err := s.deps.History.Save(c.Request.Context(), item, s.deps.HistoryKeep); err != nil {
		s.log.Warn("save history", zap.Error(err))
		return "", false
	}
	return item.ID, true
}

func statusFor(k llm.Kind) int {
	switch k {
	case llm.KindInvalidKey:
		return http.StatusUnauthorized
	case llm.KindQuota, llm.KindRateLimit:
		return http.StatusTooManyRequests
	case llm.KindTimeout:
		return http.StatusGatewayTimeout
	case llm.KindCanceled:
		return 499
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) listHistory(c *gin.Context) {
	if s.deps.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is not configured"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	items, err := s.deps.History.List(c.Request.Context(), limit)
	if err != nil {
		s.log.Error("list history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if items == nil {
		items = []store.HistoryItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) getHistory(c *gin.Context) {
	if s.deps.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is not configured"})
		return
	}
	item, err := s.deps.History.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.log.Error("get history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) deleteHistory(c *gin.Context) {
	if s.deps.History == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is not configured"})
		return
	}
	err := s.deps.History.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "history item not found"})
	case err != nil:
		s.log.Error("delete history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
	default:
		c.Status(http.StatusNoContent)
	}
}
