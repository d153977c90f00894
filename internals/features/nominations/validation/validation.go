package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"pahla_backend/internals/features/nominations/model"
)

// FieldErrors are keyed by JSON field name.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(fe[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	// Permissive international phone: optional +, digits and common separators.
	rePhoneChars = regexp.MustCompile(`^\+?[0-9 ()\-.]{6,24}$`)
	reDigits     = regexp.MustCompile(`[0-9]`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("intl_phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("country_code", func(fl validator.FieldLevel) bool {
		return IsCountryCode(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	})
	return v
}

// IsPhone accepts 7..15 digits with optional leading + and separators.
func IsPhone(s string) bool {
	s = strings.TrimSpace(s)
	if !rePhoneChars.MatchString(s) {
		return false
	}
	n := len(reDigits.FindAllString(s, -1))
	return n >= 7 && n <= 15
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "intl_phone":
		return "must be a valid international phone number"
	case "country_code":
		return "must be an ISO 3166 country code"
	case "http_url", "url":
		return "must be a valid http(s) URL"
	case "eq":
		return "must be confirmed"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// check runs struct validation and maps errors onto JSON field names.
func check(v any) FieldErrors {
	out := FieldErrors{}
	err := validate.Struct(v)
	if err == nil {
		return out
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		out.Add("_", err.Error())
		return out
	}
	for _, fe := range ves {
		// dive errors arrive as "media_links[1]"
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func trim(s string) string { return strings.TrimSpace(s) }

/* ===============================
   Per-section validators
=================================*/

func ValidateA(in model.SectionA) (model.SectionA, FieldErrors) {
	in.NomineeFullName = trim(in.NomineeFullName)
	in.NomineeGender = strings.ToLower(trim(in.NomineeGender))
	in.NomineeDOB = trim(in.NomineeDOB)
	in.NomineeNationality = strings.ToUpper(trim(in.NomineeNationality))
	in.NomineeCountryOfResidence = strings.ToUpper(trim(in.NomineeCountryOfResidence))
	in.NomineeOrganization = trim(in.NomineeOrganization)
	in.NomineeTitlePosition = trim(in.NomineeTitlePosition)
	in.NomineeEmail = strings.ToLower(trim(in.NomineeEmail))
	in.NomineePhone = trim(in.NomineePhone)
	in.NomineeSocialMedia = trim(in.NomineeSocialMedia)
	in.NomineeType = strings.ToLower(trim(in.NomineeType))
	in.SummaryOfAchievement = trim(in.SummaryOfAchievement)
	in.NominatorFullName = trim(in.NominatorFullName)
	in.NominatorEmail = strings.ToLower(trim(in.NominatorEmail))

	if errs := check(in); !errs.Empty() {
		return model.SectionA{}, errs
	}
	return in, nil
}

// AwardCatalog is the category lookup section B validates against.
type AwardCatalog interface {
	Offers(categoryID, award string) bool
	Known(categoryID string) bool
}

func ValidateB(catalog AwardCatalog, in model.SectionB) (model.SectionB, FieldErrors) {
	in.AwardCategory = trim(in.AwardCategory)
	in.SpecificAward = trim(in.SpecificAward)

	errs := check(in)
	if _, bad := errs["award_category"]; !bad && !catalog.Known(in.AwardCategory) {
		errs.Add("award_category", "must reference a known award category")
	}
	if _, bad := errs["specific_award"]; !bad && catalog.Known(in.AwardCategory) && !catalog.Offers(in.AwardCategory, in.SpecificAward) {
		errs.Add("specific_award", "is not offered in the selected category")
	}
	if !errs.Empty() {
		return model.SectionB{}, errs
	}
	return in, nil
}

// ReconcileAward returns award when category offers it, otherwise "".
// Switching category therefore clears an award the new category does not list.
func ReconcileAward(catalog AwardCatalog, category, award string) string {
	if award == "" || !catalog.Offers(category, award) {
		return ""
	}
	return award
}

func ValidateC(in model.SectionC) (model.SectionC, FieldErrors) {
	in.Justification = trim(in.Justification)
	in.NotableRecognitions = trim(in.NotableRecognitions)
	links := make([]string, 0, len(in.MediaLinks))
	for _, l := range in.MediaLinks {
		if l = trim(l); l != "" {
			links = append(links, l)
		}
	}
	in.MediaLinks = links
	if len(in.MediaLinks) == 0 {
		in.MediaLinks = nil
	}

	if errs := check(in); !errs.Empty() {
		return model.SectionC{}, errs
	}
	return in, nil
}

func ValidateD(in model.SectionD) (model.SectionD, FieldErrors) {
	in.NominatorFullName = trim(in.NominatorFullName)
	in.NominatorRelationshipToNominee = trim(in.NominatorRelationshipToNominee)
	in.NominatorEmail = strings.ToLower(trim(in.NominatorEmail))
	in.NominatorPhone = trim(in.NominatorPhone)
	in.NominatorOrganization = trim(in.NominatorOrganization)
	in.NominatorReason = trim(in.NominatorReason)

	if errs := check(in); !errs.Empty() {
		return model.SectionD{}, errs
	}
	return in, nil
}

func ValidateE(in model.SectionE) (model.SectionE, FieldErrors) {
	in.NominatorSignature = trim(in.NominatorSignature)
	if errs := check(in); !errs.Empty() {
		return model.SectionE{}, errs
	}
	return in, nil
}

// Validate dispatches on the section's key.
func Validate(catalog AwardCatalog, sec model.Section) (model.Section, FieldErrors) {
	switch v := sec.(type) {
	case model.SectionA:
		return wrap(ValidateA(v))
	case model.SectionB:
		return wrap(ValidateB(catalog, v))
	case model.SectionC:
		return wrap(ValidateC(v))
	case model.SectionD:
		return wrap(ValidateD(v))
	case model.SectionE:
		return wrap(ValidateE(v))
	}
	return nil, FieldErrors{"_": {fmt.Sprintf("unsupported section %T", sec)}}
}

func wrap[T model.Section](v T, errs FieldErrors) (model.Section, FieldErrors) {
	if !errs.Empty() {
		return nil, errs
	}
	return v, nil
}
