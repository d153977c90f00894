package model

import (
	"fmt"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
)

type SectionKey string

const (
	KeyA SectionKey = "A"
	KeyB SectionKey = "B"
	KeyC SectionKey = "C"
	KeyD SectionKey = "D"
	KeyE SectionKey = "E"
)

// SectionKeys in wizard order.
var SectionKeys = []SectionKey{KeyA, KeyB, KeyC, KeyD, KeyE}

// Step is the 1-based wizard step of the section.
func (k SectionKey) Step() int {
	for i, key := range SectionKeys {
		if key == k {
			return i + 1
		}
	}
	return 0
}

func (k SectionKey) ColumnName() string {
	switch k {
	case KeyA:
		return "form_section_a"
	case KeyB:
		return "form_section_b"
	case KeyC:
		return "form_section_c"
	case KeyD:
		return "form_section_d"
	case KeyE:
		return "form_section_e"
	}
	return ""
}

// KeyForStep maps 1..5 onto A..E.
func KeyForStep(step int) (SectionKey, bool) {
	if step < 1 || step > len(SectionKeys) {
		return "", false
	}
	return SectionKeys[step-1], true
}

// Section is implemented by SectionA..SectionE.
type Section interface {
	Key() SectionKey
}

/* ===============================
   Section payloads
=================================*/

// SectionA: nominee information.
type SectionA struct {
	NomineeFullName           string `json:"nominee_full_name" validate:"required,max=200"`
	NomineeGender             string `json:"nominee_gender,omitempty" validate:"omitempty,oneof=male female other"`
	NomineeDOB                string `json:"nominee_dob,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NomineeNationality        string `json:"nominee_nationality" validate:"required,country_code"`
	NomineeCountryOfResidence string `json:"nominee_country_of_residence" validate:"required,country_code"`
	NomineeOrganization       string `json:"nominee_organization,omitempty" validate:"omitempty,max=200"`
	NomineeTitlePosition      string `json:"nominee_title_position" validate:"required,max=200"`
	NomineeEmail              string `json:"nominee_email" validate:"required,email"`
	NomineePhone              string `json:"nominee_phone" validate:"required,intl_phone"`
	NomineeSocialMedia        string `json:"nominee_social_media,omitempty" validate:"omitempty,max=500"`

	NomineeType          string `json:"nominee_type,omitempty" validate:"omitempty,oneof=individual organization institution"`
	SummaryOfAchievement string `json:"summary_of_achievement,omitempty" validate:"omitempty,max=1000"`
	NominatorFullName    string `json:"nominator_full_name,omitempty" validate:"omitempty,max=200"`
	NominatorEmail       string `json:"nominator_email,omitempty" validate:"omitempty,email"`
}

// SectionB: award category selection.
type SectionB struct {
	AwardCategory string `json:"award_category" validate:"required"`
	SpecificAward string `json:"specific_award" validate:"required"`
}

// SectionC: justification and supporting links.
type SectionC struct {
	Justification       string   `json:"justification" validate:"required,max=2500"`
	NotableRecognitions string   `json:"notable_recognitions,omitempty" validate:"omitempty,max=2500"`
	MediaLinks          []string `json:"media_links,omitempty" validate:"omitempty,dive,http_url"`
}

// SectionD: nominator information.
type SectionD struct {
	NominatorFullName              string `json:"nominator_full_name" validate:"required,max=200"`
	NominatorRelationshipToNominee string `json:"nominator_relationship_to_nominee" validate:"required,max=200"`
	NominatorEmail                 string `json:"nominator_email" validate:"required,email"`
	NominatorPhone                 string `json:"nominator_phone" validate:"required,intl_phone"`
	NominatorOrganization          string `json:"nominator_organization,omitempty" validate:"omitempty,max=200"`
	NominatorReason                string `json:"nominator_reason" validate:"required,max=500"`
}

// SectionE: confirmation.
type SectionE struct {
	ConfirmAccuracy    bool   `json:"confirm_accuracy" validate:"eq=true"`
	NominatorSignature string `json:"nominator_signature" validate:"required,max=200"`
	ConfirmedAt        string `json:"confirmed_at,omitempty"`
}

func (SectionA) Key() SectionKey { return KeyA }
func (SectionB) Key() SectionKey { return KeyB }
func (SectionC) Key() SectionKey { return KeyC }
func (SectionD) Key() SectionKey { return KeyD }
func (SectionE) Key() SectionKey { return KeyE }

/* ===============================
   Sections: the five optional slots
=================================*/

type Sections struct {
	A *SectionA `json:"section_a,omitempty"`
	B *SectionB `json:"section_b,omitempty"`
	C *SectionC `json:"section_c,omitempty"`
	D *SectionD `json:"section_d,omitempty"`
	E *SectionE `json:"section_e,omitempty"`
}

func (s Sections) Get(k SectionKey) (Section, bool) {
	switch k {
	case KeyA:
		if s.A != nil {
			return *s.A, true
		}
	case KeyB:
		if s.B != nil {
			return *s.B, true
		}
	case KeyC:
		if s.C != nil {
			return *s.C, true
		}
	case KeyD:
		if s.D != nil {
			return *s.D, true
		}
	case KeyE:
		if s.E != nil {
			return *s.E, true
		}
	}
	return nil, false
}

func (s Sections) Has(k SectionKey) bool {
	_, ok := s.Get(k)
	return ok
}

// Set stores sec in its slot, replacing whatever was there.
func (s *Sections) Set(sec Section) {
	switch v := sec.(type) {
	case SectionA:
		s.A = &v
	case *SectionA:
		s.A = cloneA(v)
	case SectionB:
		s.B = &v
	case *SectionB:
		s.B = cloneB(v)
	case SectionC:
		v.MediaLinks = append([]string(nil), v.MediaLinks...)
		s.C = &v
	case *SectionC:
		s.C = cloneC(v)
	case SectionD:
		s.D = &v
	case *SectionD:
		s.D = cloneD(v)
	case SectionE:
		s.E = &v
	case *SectionE:
		s.E = cloneE(v)
	}
}

// Present lists the filled sections in wizard order.
func (s Sections) Present() []SectionKey {
	out := make([]SectionKey, 0, len(SectionKeys))
	for _, k := range SectionKeys {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// ContiguousPrefix counts filled sections from A up to the first gap.
func (s Sections) ContiguousPrefix() int {
	n := 0
	for _, k := range SectionKeys {
		if !s.Has(k) {
			break
		}
		n++
	}
	return n
}

func (s Sections) Empty() bool { return len(s.Present()) == 0 }

// Clone deep-copies every present slot.
func (s Sections) Clone() Sections {
	return Sections{
		A: cloneA(s.A),
		B: cloneB(s.B),
		C: cloneC(s.C),
		D: cloneD(s.D),
		E: cloneE(s.E),
	}
}

func cloneA(v *SectionA) *SectionA {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneB(v *SectionB) *SectionB {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneC(v *SectionC) *SectionC {
	if v == nil {
		return nil
	}
	c := *v
	c.MediaLinks = append([]string(nil), v.MediaLinks...)
	return &c
}

func cloneD(v *SectionD) *SectionD {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneE(v *SectionE) *SectionE {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

/* ===============================
   JSON column codec
=================================*/

// EncodeSection marshals sec for its form_section_* column.
func EncodeSection(sec Section) (datatypes.JSON, error) {
	b, err := sonic.Marshal(sec)
	if err != nil {
		return nil, fmt.Errorf("encode section %s: %w", sec.Key(), err)
	}
	return datatypes.JSON(b), nil
}

// DecodeSections reads every non-null form_section_* column.
func (m *NominationModel) DecodeSections() (Sections, error) {
	var out Sections
	for _, k := range SectionKeys {
		raw := *m.Column(k)
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var err error
		switch k {
		case KeyA:
			var v SectionA
			err = sonic.Unmarshal(raw, &v)
			out.A = &v
		case KeyB:
			var v SectionB
			err = sonic.Unmarshal(raw, &v)
			out.B = &v
		case KeyC:
			var v SectionC
			err = sonic.Unmarshal(raw, &v)
			out.C = &v
		case KeyD:
			var v SectionD
			err = sonic.Unmarshal(raw, &v)
			out.D = &v
		case KeyE:
			var v SectionE
			err = sonic.Unmarshal(raw, &v)
			out.E = &v
		}
		if err != nil {
			return Sections{}, fmt.Errorf("decode section %s of %s: %w", k, m.ID, err)
		}
	}
	return out, nil
}
