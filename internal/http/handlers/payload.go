package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/wolfman30/dentalis-receptionist/internal/patients"
)

// UnknownCaller is reported when no caller number can be found anywhere in a
// webhook request.
const UnknownCaller = "UNKNOWN"

const maxIntArg = 1 << 20

// argumentFields lists where each tool argument may appear, in priority order.
// Retell nests tool arguments under "args" and call metadata under "call";
// older agent configurations post them at the top level or under other names.
var argumentFields = map[string][]string{
	"service":       {"args.service", "service"},
	"days":          {"args.days", "days"},
	"datetime":      {"args.datetime", "datetime", "args.start", "start", "args.iso", "iso", "args.slot", "slot"},
	"patient_name":  {"args.patient_name", "patient_name", "args.name", "name"},
	"patient_phone": {"args.patient_phone", "patient_phone", "args.phone", "phone", "call.from_number"},
	"patient_email": {"args.patient_email", "patient_email", "args.email", "email"},
	"notes":         {"args.notes", "notes"},
	"event":         {"event", "args.event"},
	"call_id":       {"call.call_id", "call_id"},
}

// Payload is a loosely-typed webhook body.
type Payload struct {
	fields map[string]any
}

// ParsePayload decodes body. Empty or malformed JSON yields an empty payload.
func ParsePayload(body []byte) Payload {
	fields := map[string]any{}
	if len(bytes.TrimSpace(body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil || fields == nil {
			fields = map[string]any{}
		}
	}
	return Payload{fields: fields}
}

// Arg returns the first non-empty value for a field in argumentFields.
func (p Payload) Arg(name string) string {
	locations, ok := argumentFields[name]
	if !ok {
		locations = []string{"args." + name, name}
	}
	return p.First(locations...)
}

// First returns the first non-empty string found at the given dotted paths.
func (p Payload) First(paths ...string) string {
	for _, path := range paths {
		if s, ok := asString(p.lookup(path)); ok {
			return s
		}
	}
	return ""
}

// IntArg returns a positive integer argument, or 0 when absent, invalid or
// beyond maxIntArg.
func (p Payload) IntArg(name string) int {
	raw := p.Arg(name)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 1 || f > maxIntArg {
		return 0
	}
	return int(f)
}

func (p Payload) lookup(path string) any {
	var cur any = p.fields
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func asString(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// CallerNumber finds the caller's phone number. Retell has carried it in the
// call object, the query string, the tool arguments, the top level and custom
// headers depending on agent version.
func CallerNumber(r *http.Request, p Payload) string {
	number := p.First("call.from_number")
	if number == "" && r != nil {
		number = strings.TrimSpace(r.URL.Query().Get("number"))
	}
	if number == "" {
		number = p.First("args.caller_number", "from_number", "caller_id")
	}
	if number == "" && r != nil {
		for _, h := range []string{"X-Retell-From-Number", "X-Retell-Call-From"} {
			if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
				number = v
				break
			}
		}
	}
	if number == "" {
		return UnknownCaller
	}
	return patients.NormalizePhone(number)
}
