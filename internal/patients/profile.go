// Package patients looks up returning callers by phone number so the voice
// agent can greet them by name.
package patients

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// Profile is what the agent is told about a caller. Missing fields stay nil so
// the webhook reply carries JSON nulls.
type Profile struct {
	Forename          *string `json:"forename"`
	Surname           *string `json:"surname"`
	Email             *string `json:"email"`
	LastVisitDate     *string `json:"last_visit_date"`
	OtherRelevantInfo *string `json:"other_relevant_info"`
}

// FullName joins forename and surname, skipping empty parts.
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	for _, v := range []*string{p.Forename, p.Surname} {
		if v != nil && strings.TrimSpace(*v) != "" {
			parts = append(parts, strings.TrimSpace(*v))
		}
	}
	return strings.Join(parts, " ")
}

// Store finds a patient by normalized phone number. A nil profile with a nil
// error means the number is not on file.
type Store interface {
	FindByPhone(ctx context.Context, phone string) (*Profile, error)
}

// recordFields lists, per profile field, the column names seen across patient
// tables in the order they are preferred.
var recordFields = []struct {
	keys []string
	set  func(*Profile, *string)
}{
	{[]string{"forename", "first_name"}, func(p *Profile, v *string) { p.Forename = v }},
	{[]string{"surname", "last_name"}, func(p *Profile, v *string) { p.Surname = v }},
	{[]string{"email"}, func(p *Profile, v *string) { p.Email = v }},
	{[]string{"last_visit_date", "last_visit"}, func(p *Profile, v *string) { p.LastVisitDate = v }},
	{[]string{"notes", "other_relevant_info"}, func(p *Profile, v *string) { p.OtherRelevantInfo = v }},
}

// FromRecord builds a Profile from a loosely-typed patient row.
func FromRecord(rec map[string]any) *Profile {
	if rec == nil {
		return nil
	}
	p := &Profile{}
	for _, f := range recordFields {
		for _, key := range f.keys {
			if s, ok := stringValue(rec[key]); ok {
				f.set(p, &s)
				break
			}
		}
	}
	return p
}

func stringValue(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// NormalizePhone strips the spaces and dashes callers and carriers insert.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
}

func strPtr(s string) *string {
	return &s
}
