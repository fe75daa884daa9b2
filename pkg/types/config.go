package types

import "time"

// HTTPConfig holds shared HTTP settings used by the source clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citecheck/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CompareConfig holds the calibratable thresholds of the metadata comparator.
type CompareConfig struct {
	// TitleThreshold is the minimum title similarity for a title match
	// (default 0.85, consistent with the duplicate-detection threshold).
	TitleThreshold float64 `json:"title_threshold" yaml:"title_threshold"`

	// AuthorThreshold is the minimum fraction of matched names, measured
	// against the longer author list (default 0.5; sources truncate long
	// author lists, so demanding a full match flags too many entries).
	AuthorThreshold float64 `json:"author_threshold" yaml:"author_threshold"`

	// NameSimilarity is the minimum similarity for two author names to count
	// as the same person when neither equals nor contains the other (default 0.8).
	NameSimilarity float64 `json:"name_similarity" yaml:"name_similarity"`

	// YearTolerance is the maximum allowed difference between years
	// (default 0; set 1 to accept the common preprint/camera-ready lag).
	YearTolerance int `json:"year_tolerance" yaml:"year_tolerance"`

	// MinConfidence is the overall confidence floor a verdict must clear to
	// be accepted as a match (default 0.75).
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
}

// CacheConfig holds settings for the on-disk fetch cache.
type CacheConfig struct {
	// Enabled controls whether fetched records are cached at all.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file backing the cache.
	Path string `json:"path" yaml:"path"`

	// TTL is how long a cached record stays valid (default 1h).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// SourceConfig holds per-source client settings.
type SourceConfig struct {
	// Delay is the minimum spacing between consecutive requests to this
	// source; concurrent workers queue on it.
	Delay time.Duration `json:"delay" yaml:"delay"`

	// APIKey is an optional authentication key for sources that take one.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Mailto is a contact address sent to sources with polite-pool policies
	// (CrossRef, OpenAlex).
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`
}

// SourcesConfig groups the per-source settings.
type SourcesConfig struct {
	Arxiv           SourceConfig `json:"arxiv" yaml:"arxiv"`
	Crossref        SourceConfig `json:"crossref" yaml:"crossref"`
	SemanticScholar SourceConfig `json:"semantic_scholar" yaml:"semantic_scholar"`
	Dblp            SourceConfig `json:"dblp" yaml:"dblp"`
	OpenAlex        SourceConfig `json:"openalex" yaml:"openalex"`
	Scholar         SourceConfig `json:"google_scholar" yaml:"google_scholar"`
}

// Step names one (source, lookup-method) pairing in the verification
// workflow. The set is closed: the orchestrator recognizes exactly these
// values and skips anything else.
type Step string

const (
	StepArxivID         Step = "arxiv_id"
	StepCrossrefDOI     Step = "crossref_doi"
	StepSemanticScholar Step = "semantic_scholar"
	StepDblp            Step = "dblp"
	StepOpenAlex        Step = "openalex"
	StepArxivTitle      Step = "arxiv_title"
	StepCrossrefTitle   Step = "crossref_title"
	StepGoogleScholar   Step = "google_scholar"
)

// WorkflowStep is one configured attempt in the ordered verification
// sequence.
type WorkflowStep struct {
	// Name selects the step; it must be one of the Step values.
	Name Step `json:"name" yaml:"name"`

	// Enabled controls whether the step runs. Disabled steps keep their
	// position so users can toggle them without reordering.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// ReportConfig holds settings for report rendering.
type ReportConfig struct {
	// ShowVerified includes the per-entry list of verified citations in the
	// Markdown report (collapsed by default in rendering).
	ShowVerified bool `json:"show_verified" yaml:"show_verified"`

	// CheckPreprintRatio warns when too many entries cite preprint venues.
	CheckPreprintRatio bool `json:"check_preprint_ratio" yaml:"check_preprint_ratio"`

	// PreprintThreshold is the preprint share of the batch above which the
	// warning fires (default 0.5).
	PreprintThreshold float64 `json:"preprint_threshold" yaml:"preprint_threshold"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is the minimum level to emit: debug, info, warn, or error.
	Level string `json:"level" yaml:"level"`

	// Format selects the encoder: "json" or "console".
	Format string `json:"format" yaml:"format"`
}

// Config is the top-level citecheck configuration.
type Config struct {
	// MaxWorkers bounds the verification worker pool; the effective pool is
	// min(MaxWorkers, batch size).
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`

	// MaxResults is how many candidates a title search requests per source.
	MaxResults int `json:"max_results" yaml:"max_results"`

	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	Compare  CompareConfig  `json:"compare" yaml:"compare"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Sources  SourcesConfig  `json:"sources" yaml:"sources"`
	Workflow []WorkflowStep `json:"workflow" yaml:"workflow"`
	Report   ReportConfig   `json:"report" yaml:"report"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// DefaultWorkflow returns the standard step order: identifier lookups first,
// then title searches, with Google Scholar last and disabled (scraping; opt
// in deliberately).
func DefaultWorkflow() []WorkflowStep {
	return []WorkflowStep{
		{Name: StepArxivID, Enabled: true},
		{Name: StepCrossrefDOI, Enabled: true},
		{Name: StepSemanticScholar, Enabled: true},
		{Name: StepDblp, Enabled: true},
		{Name: StepOpenAlex, Enabled: true},
		{Name: StepArxivTitle, Enabled: true},
		{Name: StepCrossrefTitle, Enabled: true},
		{Name: StepGoogleScholar, Enabled: false},
	}
}

// DefaultConfig returns the configuration citecheck runs with when no config
// file overrides it.
func DefaultConfig() Config {
	return Config{
		MaxWorkers: 10,
		MaxResults: 3,
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "citecheck/0.1",
		},
		Compare: CompareConfig{
			TitleThreshold:  0.85,
			AuthorThreshold: 0.5,
			NameSimilarity:  0.8,
			YearTolerance:   0,
			MinConfidence:   0.75,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "citecheck-cache.db",
			TTL:     time.Hour,
		},
		Sources: SourcesConfig{
			Arxiv:           SourceConfig{Delay: 3 * time.Second},
			Crossref:        SourceConfig{Delay: 1 * time.Second},
			SemanticScholar: SourceConfig{Delay: 1 * time.Second},
			Dblp:            SourceConfig{Delay: 1 * time.Second},
			OpenAlex:        SourceConfig{Delay: 1 * time.Second},
			Scholar:         SourceConfig{Delay: 5 * time.Second},
		},
		Workflow: DefaultWorkflow(),
		Report: ReportConfig{
			ShowVerified:       true,
			CheckPreprintRatio: true,
			PreprintThreshold:  0.5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
