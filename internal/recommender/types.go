package recommender

import (
	"encoding/json"
	"sort"
)

// RecommendationType is the kind of action a recommendation proposes
type RecommendationType string

const (
	TypeRestock RecommendationType = "RESTOCK"
	TypeRemove  RecommendationType = "REMOVE"
	TypeAdd     RecommendationType = "ADD"
)

// Urgency ranks how soon a recommendation should be acted on
type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

// InventoryItem is the canonical shape every raw medicine or inventory
// record is normalized into before analysis.
type InventoryItem struct {
	ID            *string `json:"id"`
	Name          string  `json:"name"`
	Stock         int     `json:"stock"`
	Threshold     int     `json:"threshold"`
	SafetyStock   int     `json:"safetyStock"`
	ExpiryDate    *string `json:"expiryDate"`
	Critical      bool    `json:"critical"`
	Hospital      string  `json:"hospital"`
	Category      string  `json:"category"`
	Manufacturer  string  `json:"manufacturer,omitempty"`
	Strength      string  `json:"strength,omitempty"`
	DosageForm    string  `json:"dosageForm,omitempty"`
	LastRestocked *string `json:"lastRestocked"`

	// Usage is merged in after metrics are computed; nil when the item
	// has no usage history.
	*UsageMetric
}

// UsageMetric is derived per item from its usage history
type UsageMetric struct {
	UsageRate         float64 `json:"usageRate"`
	DaysUntilStockout *int    `json:"daysUntilStockout"`
	TotalUsed         float64 `json:"totalUsed"`
	UsageDays         int     `json:"usageDays"`
}

// MedicineRef identifies the medicine a recommendation is about
type MedicineRef struct {
	Name string  `json:"name"`
	ID   *string `json:"id"`
}

// Metadata carries the known optional recommendation attributes plus any
// extra keys the model chose to include.
type Metadata struct {
	CurrentStock        *float64 `json:"currentStock,omitempty"`
	RecommendedQuantity *float64 `json:"recommendedQuantity,omitempty"`
	EstimatedCost       *float64 `json:"estimatedCost,omitempty"`
	DaysUntilStockout   *float64 `json:"daysUntilStockout,omitempty"`
	ExpirationDate      *string  `json:"expirationDate,omitempty"`
	UsageRate           *float64 `json:"usageRate,omitempty"`
	LeadTimeDays        *float64 `json:"leadTimeDays,omitempty"`

	Extra map[string]any `json:"-"`
}

// knownMetadataKeys maps each typed metadata key to whether it holds a string
var knownMetadataKeys = map[string]bool{
	"currentStock":        false,
	"recommendedQuantity": false,
	"estimatedCost":       false,
	"daysUntilStockout":   false,
	"expirationDate":      true,
	"usageRate":           false,
	"leadTimeDays":        false,
}

// MarshalJSON flattens Extra next to the known fields. Known fields win on
// key collisions.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+len(knownMetadataKeys))
	for k, v := range m.Extra {
		if _, known := knownMetadataKeys[k]; known {
			continue
		}
		out[k] = v
	}
	setNumber(out, "currentStock", m.CurrentStock)
	setNumber(out, "recommendedQuantity", m.RecommendedQuantity)
	setNumber(out, "estimatedCost", m.EstimatedCost)
	setNumber(out, "daysUntilStockout", m.DaysUntilStockout)
	setNumber(out, "usageRate", m.UsageRate)
	setNumber(out, "leadTimeDays", m.LeadTimeDays)
	if m.ExpirationDate != nil {
		out["expirationDate"] = *m.ExpirationDate
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON. It does not validate; see
// ParseAndValidate for the strict path.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata{}
	for k, v := range raw {
		if _, known := knownMetadataKeys[k]; !known {
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
			continue
		}
		m.set(k, v)
	}
	return nil
}

func (m *Metadata) set(key string, v any) {
	if s, ok := v.(string); ok && key == "expirationDate" {
		m.ExpirationDate = &s
		return
	}
	f, ok := v.(float64)
	if !ok {
		return
	}
	switch key {
	case "currentStock":
		m.CurrentStock = &f
	case "recommendedQuantity":
		m.RecommendedQuantity = &f
	case "estimatedCost":
		m.EstimatedCost = &f
	case "daysUntilStockout":
		m.DaysUntilStockout = &f
	case "usageRate":
		m.UsageRate = &f
	case "leadTimeDays":
		m.LeadTimeDays = &f
	}
}

// ExtraKeys returns the extra metadata keys in sorted order
func (m Metadata) ExtraKeys() []string {
	keys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setNumber(out map[string]any, key string, v *float64) {
	if v != nil {
		out[key] = *v
	}
}

// Recommendation is a single actionable suggestion
type Recommendation struct {
	ID         string             `json:"id"`
	Type       RecommendationType `json:"type"`
	Medicine   MedicineRef        `json:"medicine"`
	Action     string             `json:"action"`
	Reasoning  string             `json:"reasoning"`
	Confidence float64            `json:"confidence"`
	Urgency    Urgency            `json:"urgency"`
	Metadata   *Metadata          `json:"metadata,omitempty"`
}

// Summary aggregates a response
type Summary struct {
	TotalRecommendations int    `json:"totalRecommendations"`
	HighPriority         int    `json:"highPriority"`
	EstimatedImpact      string `json:"estimatedImpact"`
}

// Response is what every recommendation request resolves to
type Response struct {
	Recommendations []Recommendation `json:"recommendations"`
	Summary         Summary          `json:"summary"`
}

// Filters narrows the analysis; passed verbatim to the model
type Filters struct {
	Category    string `json:"category,omitempty"`
	UrgencyOnly bool   `json:"urgencyOnly,omitempty"`
}

// IsZero reports whether no filter was supplied
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Options tunes a single request
type Options struct {
	// UseAI defaults to true when nil
	UseAI *bool  `json:"useAI,omitempty"`
	Model string `json:"model,omitempty"`
}

// Request is the orchestrator input
type Request struct {
	InventoryData []map[string]any `json:"inventoryData"`
	UsageHistory  []map[string]any `json:"usageHistory"`
	Filters       Filters          `json:"filters"`
	Options       Options          `json:"options"`
}

// EmptyResponse is returned when there is nothing to analyze
func EmptyResponse(impact string) Response {
	return Response{
		Recommendations: []Recommendation{},
		Summary: Summary{
			EstimatedImpact: impact,
		},
	}
}

func countHigh(recs []Recommendation) int {
	n := 0
	for _, r := range recs {
		if r.Urgency == UrgencyHigh {
			n++
		}
	}
	return n
}
