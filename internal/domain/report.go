package domain

import (
	"encoding/json"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusPlanned   = "planned"
	StatusFailed    = "failed"
)

const (
	FileStatusPlanned = "planned"
	FileStatusWritten = "written"
	FileStatusFailed  = "failed"
)

const (
	ErrCodeInvalidURL     = "invalid_url"
	ErrCodeNotMovieURL    = "not_movie_url"
	ErrCodeInvalidArgs    = "invalid_args"
	ErrCodeFetchFailed    = "fetch_failed"
	ErrCodeParseFailed    = "parse_failed"
	ErrCodeMissingField   = "missing_field"
	ErrCodeTargetConflict = "target_conflict"
	ErrCodeIOFailed       = "io_failed"
	ErrCodeConfigInvalid  = "config_invalid"
)

// GatherReport 是一次 gather 的对外稳定输出（stdout JSON）。
type GatherReport struct {
	URL    string `json:"url"`
	DryRun bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Movie    *MovieSummary `json:"movie,omitempty"`
	FileName string        `json:"file_name"`
	Files    []FileResult  `json:"files"`
}

// MovieSummary 是报告里的影片元数据快照（不含封面字节）。
type MovieSummary struct {
	TitleID   string   `json:"title_id"`
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Genres    []string `json:"genres"`
	Directors []string `json:"directors"`
	Writers   []string `json:"writers"`
	Cast      []string `json:"cast"`
}

type FileResult struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"` // cover / tags / nfo
	Status string `json:"status"`
}

// Summarize 生成 m 的报告快照。
func Summarize(id string, m *Movie) *MovieSummary {
	return &MovieSummary{
		TitleID:   id,
		Title:     m.Title(),
		Year:      m.Year(),
		Genres:    m.Genres(),
		Directors: m.Directors(),
		Writers:   m.Writers(),
		Cast:      m.Cast(),
	}
}

// Finalize 把时间统一为 UTC，并保证 files 在 JSON 中是 [] 而不是 null。
func (r *GatherReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Files == nil {
		r.Files = []FileResult{}
	}
}

// MarshalJSON 仅用于集中约束输出的稳定性。
func (r GatherReport) MarshalJSON() ([]byte, error) {
	type Alias GatherReport
	return json.Marshal(Alias(r))
}
