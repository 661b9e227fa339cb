package classifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/beacon/internal/responder"
	"github.com/JaimeStill/beacon/pkg/formatting"
)

// Result is one element of the JSON array the model is instructed to return.
type Result struct {
	UUID               string  `json:"uuid"`
	Topic              string  `json:"topic_classification"`
	Urgency            Urgency `json:"urgency_level"`
	Sentiment          string  `json:"sentiment"`
	TargetAudience     Labels  `json:"target_audience"`
	AffectedRegion     string  `json:"affected_region"`
	ContextualContent  string  `json:"contextual_content"`
	ContextualKeywords Labels  `json:"contextual_keywords"`
}

// UnmarshalJSON decodes a result whose urgency_level is NoUrgency unless the
// key is present with a numeric value.
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	p := plain{Urgency: NoUrgency}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Result(p)
	return nil
}

// Urgency accepts a JSON number or a numeric string. Fractions are rounded.
// Null and non-numeric values decode as NoUrgency so that Validate rejects the
// one result instead of the whole response failing to decode.
type Urgency int

// NoUrgency marks a score that was missing, null, or not a number.
const NoUrgency Urgency = -1

func (u *Urgency) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*u = NoUrgency
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*u = NoUrgency
		return nil
	}
	*u = Urgency(math.Round(f))
	return nil
}

// Labels accepts a JSON array of strings, a single string, or a
// comma-separated string.
type Labels []string

func (l *Labels) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = clean(items)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = clean(strings.Split(s, ","))
	return nil
}

func clean(items []string) Labels {
	out := make(Labels, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Parse extracts the classification array from a raw model response. Code
// fences and surrounding prose are tolerated, as is a single-key object
// wrapping the array.
func Parse(raw string) ([]Result, error) {
	if results, err := formatting.Parse[[]Result](raw); err == nil {
		return results, nil
	}

	wrapped, err := formatting.Parse[map[string][]Result](raw)
	if err == nil && len(wrapped) == 1 {
		for _, results := range wrapped {
			return results, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrParseFailed, formatting.Truncate(raw, 200))
}

// Validate canonicalizes label casing against the allowed category sets and
// checks the urgency range. The first violation is returned.
func (r *Result) Validate() error {
	if strings.TrimSpace(r.UUID) == "" {
		return fmt.Errorf("%w: missing uuid", ErrInvalidResult)
	}

	var ok bool
	if r.Topic, ok = canonical(r.Topic, responder.Topics); !ok {
		return fmt.Errorf("%w: unknown topic %q", ErrInvalidResult, r.Topic)
	}
	if r.Sentiment, ok = canonical(r.Sentiment, responder.Sentiments); !ok {
		return fmt.Errorf("%w: unknown sentiment %q", ErrInvalidResult, r.Sentiment)
	}
	if r.AffectedRegion, ok = canonical(r.AffectedRegion, responder.Regions); !ok {
		return fmt.Errorf("%w: unknown region %q", ErrInvalidResult, r.AffectedRegion)
	}
	for i, a := range r.TargetAudience {
		if r.TargetAudience[i], ok = canonical(a, responder.Audiences); !ok {
			return fmt.Errorf("%w: unknown audience %q", ErrInvalidResult, a)
		}
	}
	if r.Urgency == NoUrgency {
		return fmt.Errorf("%w: missing or non-numeric urgency", ErrInvalidResult)
	}
	if r.Urgency < 0 || r.Urgency > responder.MaxUrgency {
		return fmt.Errorf("%w: urgency %d outside 0..%d", ErrInvalidResult, r.Urgency, responder.MaxUrgency)
	}
	return nil
}

func canonical(value string, allowed []string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a, true
		}
	}
	return value, false
}

func (r Result) classification(batchID uuid.UUID, model string) Classification {
	audience := []string(r.TargetAudience)
	if audience == nil {
		audience = []string{}
	}
	keywords := []string(r.ContextualKeywords)
	if keywords == nil {
		keywords = []string{}
	}

	return Classification{
		BatchID:            batchID,
		PostUUID:           r.UUID,
		Topic:              r.Topic,
		Urgency:            int(r.Urgency),
		Sentiment:          r.Sentiment,
		TargetAudience:     audience,
		AffectedRegion:     r.AffectedRegion,
		ContextualContent:  strings.TrimSpace(r.ContextualContent),
		ContextualKeywords: keywords,
		ModelName:          model,
	}
}
