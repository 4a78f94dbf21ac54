// Package retrieval provides configuration options for document chunking
// and similarity retrieval.
package retrieval

import (
	"fmt"

	"github.com/kart-io/docuchat/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains chunking and retrieval configuration.
type Options struct {
	// ChunkSize is the size of text chunks in characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between consecutive chunks in characters.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of chunks to return from similarity search.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// MaxHistoryMessages 合成回答时携带的最大历史消息数。
	MaxHistoryMessages int `json:"max-history-messages" mapstructure:"max-history-messages"`

	// MaxAnswerTokens 单次回答允许的最大 token 数。
	MaxAnswerTokens int `json:"max-answer-tokens" mapstructure:"max-answer-tokens"`

	// Temperature 答案生成温度。
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:          1000,
		ChunkOverlap:       200,
		TopK:               5,
		MaxHistoryMessages: 10,
		MaxAnswerTokens:    1000,
		Temperature:        0.7,
	}
}

// AddFlags adds flags for retrieval options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"retrieval.chunk-size", o.ChunkSize, "Size of text chunks in characters.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"retrieval.chunk-overlap", o.ChunkOverlap, "Overlap between consecutive chunks.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"retrieval.top-k", o.TopK, "Number of chunks returned from similarity search.")
	fs.IntVar(&o.MaxHistoryMessages, options.Join(prefixes...)+"retrieval.max-history-messages", o.MaxHistoryMessages, "Maximum history messages included in completion.")
	fs.IntVar(&o.MaxAnswerTokens, options.Join(prefixes...)+"retrieval.max-answer-tokens", o.MaxAnswerTokens, "Maximum tokens for a generated answer.")
	fs.Float64Var(&o.Temperature, options.Join(prefixes...)+"retrieval.temperature", o.Temperature, "Answer generation temperature.")
}

// Validate validates the retrieval options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("retrieval.chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("retrieval.chunk-overlap cannot be negative"))
	}
	if o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("retrieval.chunk-overlap must be smaller than chunk-size"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieval.top-k must be positive"))
	}
	return errs
}

// Complete completes the retrieval options with defaults.
func (o *Options) Complete() error {
	if o.MaxHistoryMessages <= 0 {
		o.MaxHistoryMessages = 10
	}
	if o.MaxAnswerTokens <= 0 {
		o.MaxAnswerTokens = 1000
	}
	return nil
}
