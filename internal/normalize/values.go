package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for zone-less timestamps, read in the configured location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// text reads a string field. Numbers are formatted, Mongo {"$oid": ...}
// wrappers are unwrapped, anything else is "".
func text(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var oid struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(raw, &oid); err == nil {
		return oid.OID
	}
	return ""
}

// firstText returns the first non-empty text among the candidates.
func firstText(candidates ...json.RawMessage) string {
	for _, c := range candidates {
		if v := text(c); v != "" {
			return v
		}
	}
	return ""
}

// integer reads a whole number from a JSON number or numeric string.
func integer(raw json.RawMessage) (int, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 0 {
		return 0, false
	}
	return int(f), true
}

// instant reads a timestamp. Zero means absent or unparsable.
func instant(raw json.RawMessage, loc *time.Location) time.Time {
	if isNull(raw) {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseTimeString(strings.TrimSpace(s), loc)
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(int64(ms)).UTC()
	}

	var wrapped struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && !isNull(wrapped.Date) {
		var long struct {
			NumberLong string `json:"$numberLong"`
		}
		if err := json.Unmarshal(wrapped.Date, &long); err == nil && long.NumberLong != "" {
			n, err := strconv.ParseInt(long.NumberLong, 10, 64)
			if err != nil {
				return time.Time{}
			}
			return time.UnixMilli(n).UTC()
		}
		return instant(wrapped.Date, loc)
	}
	return time.Time{}
}

func parseTimeString(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// object decodes raw into out when raw is a JSON object.
func object(raw json.RawMessage, out any) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Unmarshal(trimmed, out) == nil
}

// elements coerces an absent value, a single object or an array into a list.
func elements(raw json.RawMessage) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return nil
	}
	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil
		}
		return list
	case '{':
		return []json.RawMessage{trimmed}
	default:
		return nil
	}
}
