package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/feichai0017/concept-graph/internal/ai"
	"github.com/feichai0017/concept-graph/pkg/logger"
)

// promptChunkLimit caps how much of a chunk is embedded in the prompt.
const promptChunkLimit = 3000

// Candidate is one unmerged concept proposed by the extraction model.
type Candidate struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
	PageNumber int    `json:"pageNumber"`
	DocumentID string `json:"-"`
}

// Extractor turns text chunks into candidate concepts via the AI
// provider. All extraction calls in the process share one rate
// limiter so concurrent jobs stay inside the upstream API budget.
type Extractor struct {
	provider ai.Provider
	limiter  *rate.Limiter
	logger   logger.Logger
}

func NewExtractor(provider ai.Provider, limiter *rate.Limiter, log logger.Logger) *Extractor {
	return &Extractor{
		provider: provider,
		limiter:  limiter,
		logger:   log,
	}
}

// ExtractChunk extracts candidate concepts from one chunk. Provider
// failures and malformed responses are contained here: they yield an
// empty result and a log entry, never a job failure. One bad model
// response must not discard the concepts of sibling chunks.
func (e *Extractor) ExtractChunk(ctx context.Context, chunk string, ordinal, totalChunks, totalPages int) []Candidate {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			e.logger.Warn("Extraction rate wait aborted",
				logger.Int("chunk", ordinal),
				logger.Error(err),
			)
			return nil
		}
	}

	page := EstimatePage(ordinal, totalChunks, totalPages)
	prompt := buildPrompt(chunk, page)

	response, err := e.provider.Ask(ctx, prompt)
	if err != nil {
		e.logger.Error("Failed to extract concepts from chunk",
			logger.Int("chunk", ordinal),
			logger.Error(err),
		)
		return nil
	}

	candidates, err := ParseConcepts(response)
	if err != nil {
		e.logger.Error("Failed to parse extraction response",
			logger.Int("chunk", ordinal),
			logger.Error(err),
		)
		return nil
	}

	for i := range candidates {
		if candidates[i].PageNumber <= 0 {
			candidates[i].PageNumber = page
		}
	}

	return candidates
}

// EstimatePage maps a chunk ordinal (1-based) to a page number
// proportional to its position in the document.
func EstimatePage(ordinal, totalChunks, totalPages int) int {
	if totalChunks <= 0 || totalPages <= 0 {
		return 1
	}
	page := (ordinal*totalPages + totalChunks - 1) / totalChunks
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page
}

func buildPrompt(chunk string, page int) string {
	if len(chunk) > promptChunkLimit {
		chunk = chunk[:promptChunkLimit]
	}

	return fmt.Sprintf(`Analyze the following study text and extract the key concepts.
Return a JSON array in this exact format:
[
  {
    "term": "Concept name",
    "definition": "A short definition",
    "example": "An illustrative example (if any)",
    "pageNumber": %d
  }
]

Text:
%s

Return only the JSON array, no explanation.`, page, chunk)
}

// ParseConcepts parses a model response defensively: code fences are
// stripped, the first top-level JSON array is located by bracket
// matching, and entries missing a term or definition are dropped. A
// missing or non-positive page number is left at zero for the caller
// to backfill.
func ParseConcepts(response string) ([]Candidate, error) {
	jsonStr := strings.TrimSpace(response)

	// Strip markdown code fences if present
	jsonStr = strings.ReplaceAll(jsonStr, "```json", "")
	jsonStr = strings.ReplaceAll(jsonStr, "```", "")

	arr, ok := firstArray(jsonStr)
	if !ok {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var raw []Candidate
	if err := json.Unmarshal([]byte(arr), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal concepts: %w", err)
	}

	candidates := make([]Candidate, 0, len(raw))
	for _, c := range raw {
		c.Term = strings.TrimSpace(c.Term)
		c.Definition = strings.TrimSpace(c.Definition)
		c.Example = strings.TrimSpace(c.Example)
		if c.Term == "" || c.Definition == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// firstArray returns the first top-level array literal in s. Brackets
// inside string literals are ignored.
func firstArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
