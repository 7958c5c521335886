package rationale

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/buyside-cli/internal/criteria"
	"github.com/sells-group/buyside-cli/internal/model"
)

const rationaleSystemPrompt = `You rate how well a candidate acquirer fits a
seller across fixed criteria. For each criterion return an integer score 0-100
and one sentence of rationale. Respond with JSON only: an object keyed by
criterion id, each value {"score": int, "text": string}.`

// AnthropicProvider asks a Claude model for per-criterion fit scores and
// caches them per buyer. Prime must run before scoring; SubScore itself
// never performs I/O so the scoring pass stays synchronous and pure.
type AnthropicProvider struct {
	client sdk.Client
	model  string

	mu    sync.RWMutex
	cache map[string]map[string]model.CriterionRationale // buyer id -> criterion -> rationale
}

// NewAnthropic creates a provider using the given API key and model id.
func NewAnthropic(apiKey, modelID string) *AnthropicProvider {
	return &AnthropicProvider{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  modelID,
		cache:  make(map[string]map[string]model.CriterionRationale),
	}
}

// Prime fetches rationales for every buyer not already cached. Failures on
// individual buyers are logged and skipped; scoring falls back to baseline
// for those.
func (p *AnthropicProvider) Prime(ctx context.Context, buyers []model.BuyerRecord) error {
	for _, b := range buyers {
		p.mu.RLock()
		_, done := p.cache[b.ID]
		p.mu.RUnlock()
		if done {
			continue
		}

		rationales, err := p.fetch(ctx, b)
		if err != nil {
			if ctx.Err() != nil {
				return eris.Wrap(err, "rationale: prime canceled")
			}
			zap.L().Warn("rationale: fetch failed, falling back to baseline",
				zap.String("buyer_id", b.ID),
				zap.Error(err),
			)
			continue
		}

		p.mu.Lock()
		p.cache[b.ID] = rationales
		p.mu.Unlock()
	}
	return nil
}

func (p *AnthropicProvider) SubScore(buyer model.BuyerRecord, criterionID string) (model.CriterionRationale, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.cache[buyer.ID][criterionID]
	return r, ok
}

func (p *AnthropicProvider) fetch(ctx context.Context, b model.BuyerRecord) (map[string]model.CriterionRationale, error) {
	var sb strings.Builder
	sb.WriteString("Criteria: ")
	sb.WriteString(strings.Join(criteria.IDs(), ", "))
	sb.WriteString("\n\nCandidate acquirer:\n")
	sb.WriteString("Name: " + b.Name + "\n")
	sb.WriteString("Kind: " + string(b.Kind) + "\n")
	sb.WriteString("Offering: " + b.OfferingText + "\n")
	sb.WriteString("Sectors: " + b.SectorText + "\n")
	sb.WriteString("Customers: " + b.CustomerText + "\n")
	sb.WriteString("M&A track record: " + string(b.TrackRecord) + "\n")

	resp, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: 1024,
		System: []sdk.TextBlockParam{
			{Text: rationaleSystemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(sb.String())),
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "rationale: message for buyer %s", b.ID)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	parsed, err := parseRationaleJSON(text)
	if err != nil {
		return nil, eris.Wrapf(err, "rationale: parse response for buyer %s", b.ID)
	}
	return parsed, nil
}

// parseRationaleJSON decodes the model's JSON, tolerating markdown fences
// and dropping unknown criterion ids.
func parseRationaleJSON(text string) (map[string]model.CriterionRationale, error) {
	text = strings.TrimSpace(text)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var raw map[string]model.CriterionRationale
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, eris.Wrap(err, "unmarshal rationale JSON")
	}

	out := make(map[string]model.CriterionRationale, len(raw))
	for id, r := range raw {
		if !criteria.Known(id) {
			continue
		}
		r.Score = clamp(r.Score)
		out[id] = r
	}
	return out, nil
}
