package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// PruneLLMEvents deletes events older than before and reports how many
	// were removed.
	PruneLLMEvents(ctx context.Context, before time.Time) (int64, error)
}

// Features records which parts of a module were generated.
type Features struct {
	RPP          bool `json:"rpp"`
	Materials    bool `json:"materials"`
	LKPD         bool `json:"lkpd"`
	Assessment   bool `json:"assessment"`
	QuestionBank bool `json:"questionBank"`
}

// HistoryItem is one saved generation.
type HistoryItem struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Subject   string          `json:"subject"`
	Grade     string          `json:"grade"`
	Topic     string          `json:"topic"`
	Features  Features        `json:"features"`
	FullData  json.RawMessage `json:"full_data,omitempty"`
	InputData json.RawMessage `json:"input_data,omitempty"`
}

// HistoryRepo stores generated lesson plans.
type HistoryRepo interface {
	// Save inserts item, assigning ID and CreatedAt when empty. When keep is
	// positive the oldest items are removed so that at most keep remain.
	Save(ctx context.Context, item *HistoryItem, keep int) error

	// Update replaces the stored plan and feature flags of an item.
	Update(ctx context.Context, id string, fullData json.RawMessage, features Features) error

	// List returns items newest first without their JSON payloads.
	List(ctx context.Context, limit int) ([]HistoryItem, error)

	// Get returns one item with payloads, or nil if it does not exist.
	Get(ctx context.Context, id string) (*HistoryItem, error)

	Delete(ctx context.Context, id string) error

	// PruneBefore deletes items created before t.
	PruneBefore(ctx context.Context, t time.Time) (int64, error)
}

// Draft is the single in-progress workspace.
type Draft struct {
	UpdatedAt time.Time
	Data      json.RawMessage
}

// DraftRepo keeps one working draft.
type DraftRepo interface {
	Save(ctx context.Context, data json.RawMessage) error
	// Load returns the draft, or nil when none is saved.
	Load(ctx context.Context) (*Draft, error)
	Clear(ctx context.Context) error
}

// AppSettings are the links shown on generated pages.
type AppSettings struct {
	PromoLink       string `json:"promoLink"`
	WhatsAppNumber  string `json:"whatsappNumber"`
	SocialMediaLink string `json:"socialMediaLink"`
}

// SettingsRepo reads and writes AppSettings.
type SettingsRepo interface {
	// Get returns stored settings, with defaults filling unset fields.
	Get(ctx context.Context, defaults AppSettings) (AppSettings, error)
	Save(ctx context.Context, s AppSettings) error
}
