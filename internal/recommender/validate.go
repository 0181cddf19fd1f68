package recommender

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies why a model reply was rejected
type FailureKind string

const (
	NoJSONFound    FailureKind = "NoJsonFound"
	MalformedJSON  FailureKind = "MalformedJson"
	SchemaMismatch FailureKind = "SchemaMismatch"
)

// ValidationError is returned by ParseAndValidate
type ValidationError struct {
	Kind   FailureKind
	Path   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsKind reports whether err is a ValidationError of the given kind
func IsKind(err error, kind FailureKind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == kind
}

func schemaErr(path, format string, args ...any) error {
	return &ValidationError{Kind: SchemaMismatch, Path: path, Reason: fmt.Sprintf(format, args...)}
}

// ExtractJSON returns the span from the first '{' to the last '}' of text.
// Models often wrap JSON in prose or code fences.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", &ValidationError{Kind: NoJSONFound, Reason: "no JSON object in model response"}
	}
	return text[start : end+1], nil
}

// ParseAndValidate extracts, parses and strictly validates a model reply.
// Any failure is a *ValidationError; a partially valid reply is never
// returned.
func ParseAndValidate(text string) (*Response, error) {
	span, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{Kind: MalformedJSON, Err: err}
	}
	if dec.More() {
		return nil, &ValidationError{Kind: MalformedJSON, Reason: "trailing data after JSON object"}
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return nil, schemaErr("", "expected object")
	}

	rawRecs, ok := root["recommendations"].([]any)
	if !ok {
		return nil, schemaErr("recommendations", "expected array")
	}
	recs := make([]Recommendation, 0, len(rawRecs))
	for i, raw := range rawRecs {
		rec, err := validateRecommendation(fmt.Sprintf("recommendations[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	summary, err := validateSummary(root["summary"])
	if err != nil {
		return nil, err
	}

	return &Response{Recommendations: recs, Summary: summary}, nil
}

func validateRecommendation(path string, raw any) (Recommendation, error) {
	var rec Recommendation
	obj, ok := raw.(map[string]any)
	if !ok {
		return rec, schemaErr(path, "expected object")
	}

	var err error
	if rec.ID, err = requireString(obj, path, "id"); err != nil {
		return rec, err
	}

	typ, err := requireString(obj, path, "type")
	if err != nil {
		return rec, err
	}
	switch RecommendationType(typ) {
	case TypeRestock, TypeRemove, TypeAdd:
		rec.Type = RecommendationType(typ)
	default:
		return rec, schemaErr(path+".type", "unknown type %q", typ)
	}

	med, ok := obj["medicine"].(map[string]any)
	if !ok {
		return rec, schemaErr(path+".medicine", "expected object")
	}
	if rec.Medicine.Name, err = requireString(med, path+".medicine", "name"); err != nil {
		return rec, err
	}
	idVal, present := med["id"]
	if !present {
		return rec, schemaErr(path+".medicine.id", "required")
	}
	switch id := idVal.(type) {
	case nil:
	case string:
		rec.Medicine.ID = &id
	default:
		return rec, schemaErr(path+".medicine.id", "expected string or null")
	}

	if rec.Action, err = requireString(obj, path, "action"); err != nil {
		return rec, err
	}
	if rec.Reasoning, err = requireString(obj, path, "reasoning"); err != nil {
		return rec, err
	}

	confidence, err := requireNumber(obj, path, "confidence")
	if err != nil {
		return rec, err
	}
	if confidence < 0 || confidence > 1 {
		return rec, schemaErr(path+".confidence", "%v outside [0,1]", confidence)
	}
	rec.Confidence = confidence

	urgency, err := requireString(obj, path, "urgency")
	if err != nil {
		return rec, err
	}
	switch Urgency(urgency) {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		rec.Urgency = Urgency(urgency)
	default:
		return rec, schemaErr(path+".urgency", "unknown urgency %q", urgency)
	}

	if rawMeta, present := obj["metadata"]; present {
		meta, err := validateMetadata(path+".metadata", rawMeta)
		if err != nil {
			return rec, err
		}
		rec.Metadata = meta
	}

	return rec, nil
}

func validateMetadata(path string, raw any) (*Metadata, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, schemaErr(path, "expected object")
	}
	meta := &Metadata{}
	for key, v := range obj {
		isString, known := knownMetadataKeys[key]
		if !known {
			if meta.Extra == nil {
				meta.Extra = make(map[string]any)
			}
			meta.Extra[key] = plain(v)
			continue
		}
		if isString {
			s, ok := v.(string)
			if !ok {
				return nil, schemaErr(path+"."+key, "expected string")
			}
			meta.set(key, s)
			continue
		}
		n, ok := v.(json.Number)
		if !ok {
			return nil, schemaErr(path+"."+key, "expected number")
		}
		f, err := n.Float64()
		if err != nil {
			return nil, schemaErr(path+"."+key, "expected number")
		}
		meta.set(key, f)
	}
	return meta, nil
}

func validateSummary(raw any) (Summary, error) {
	var s Summary
	obj, ok := raw.(map[string]any)
	if !ok {
		return s, schemaErr("summary", "expected object")
	}
	var err error
	if s.TotalRecommendations, err = requireInt(obj, "summary", "totalRecommendations"); err != nil {
		return s, err
	}
	if s.HighPriority, err = requireInt(obj, "summary", "highPriority"); err != nil {
		return s, err
	}
	if s.EstimatedImpact, err = requireString(obj, "summary", "estimatedImpact"); err != nil {
		return s, err
	}
	return s, nil
}

func requireString(obj map[string]any, path, key string) (string, error) {
	s, ok := obj[key].(string)
	if !ok {
		return "", schemaErr(path+"."+key, "expected string")
	}
	return s, nil
}

func requireNumber(obj map[string]any, path, key string) (float64, error) {
	n, ok := obj[key].(json.Number)
	if !ok {
		return 0, schemaErr(path+"."+key, "expected number")
	}
	f, err := n.Float64()
	if err != nil {
		return 0, schemaErr(path+"."+key, "expected number")
	}
	return f, nil
}

func requireInt(obj map[string]any, path, key string) (int, error) {
	n, ok := obj[key].(json.Number)
	if !ok {
		return 0, schemaErr(path+"."+key, "expected integer")
	}
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	// 3.0 is an integer too
	f, err := n.Float64()
	if err != nil || f != float64(int64(f)) {
		return 0, schemaErr(path+"."+key, "expected integer")
	}
	return int(f), nil
}

// plain converts json.Number leaves back to float64 so extras marshal and
// compare like ordinary decoded JSON.
func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = plain(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = plain(vv)
		}
		return out
	default:
		return v
	}
}
