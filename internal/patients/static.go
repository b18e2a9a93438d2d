package patients

import "context"

// StaticStore serves a fixed set of patients from memory.
type StaticStore struct {
	byPhone map[string]Profile
}

// NewStaticStore indexes profiles by normalized phone.
func NewStaticStore(profiles map[string]Profile) *StaticStore {
	idx := make(map[string]Profile, len(profiles))
	for phone, p := range profiles {
		idx[NormalizePhone(phone)] = p
	}
	return &StaticStore{byPhone: idx}
}

// DemoStore returns the demo patient used when no database is reachable.
func DemoStore() *StaticStore {
	return NewStaticStore(map[string]Profile{
		"+421903123456": {
			Forename:          strPtr("Milan"),
			Surname:           strPtr("Majtán"),
			Email:             strPtr("milan@example.com"),
			LastVisitDate:     strPtr("2023-10-15"),
			OtherRelevantInfo: strPtr("Pacient má strach z ihiel."),
		},
	})
}

// FindByPhone returns a copy of the stored profile.
func (s *StaticStore) FindByPhone(_ context.Context, phone string) (*Profile, error) {
	p, ok := s.byPhone[NormalizePhone(phone)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
