package reconcile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	teacherdomain "github.com/mginvestments/marketplace/internal/teacher/domain"
	"gorm.io/datatypes"
)

// ErrMalformedRecord marks an import row that no amount of alias
// coalescing could turn into a canonical record.
var ErrMalformedRecord = errors.New("malformed_record")

// Field aliases seen across the bulk-import formats and legacy seeds.
var (
	nameAliases       = []string{"name", "full_name", "fullName", "teacher_name", "teacherName"}
	emailAliases      = []string{"email", "email_address", "emailAddress"}
	phoneAliases      = []string{"phone", "phone_number", "phoneNumber", "msisdn", "contact"}
	subjectsAliases   = []string{"subjects", "subject", "subjects_taught", "subjectsTaught"}
	experienceAliases = []string{"experience_years", "experienceYears", "experience", "years_of_experience"}
	locationAliases   = []string{"location", "district", "address", "city"}
	activeAliases     = []string{"active", "is_active", "isActive", "status"}
)

// Normalizer coalesces heterogeneous import rows into canonical Teacher
// records.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeTeacher maps one raw row onto the canonical teacher shape:
// alias coalescing, string-to-int coercion for numeric fields,
// scalar-to-slice promotion for subjects, and defaulting of absent
// booleans. A row with neither email nor name has no identity key and is
// rejected.
func (n *Normalizer) NormalizeTeacher(raw map[string]any) (*teacherdomain.Teacher, error) {
	if raw == nil {
		return nil, ErrMalformedRecord
	}

	name := strings.TrimSpace(coalesceString(raw, nameAliases))
	email := strings.ToLower(strings.TrimSpace(coalesceString(raw, emailAliases)))
	if name == "" && email == "" {
		return nil, fmt.Errorf("%w: no identity key", ErrMalformedRecord)
	}

	teacher := &teacherdomain.Teacher{
		Name:            name,
		Email:           email,
		Phone:           strings.TrimSpace(coalesceString(raw, phoneAliases)),
		Subjects:        datatypes.NewJSONSlice(coalesceStringSlice(raw, subjectsAliases)),
		ExperienceYears: coalesceInt(raw, experienceAliases),
		Location:        strings.TrimSpace(coalesceString(raw, locationAliases)),
		Active:          coalesceBool(raw, activeAliases, true),
	}
	return teacher, nil
}

func coalesceString(raw map[string]any, aliases []string) string {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch value := v.(type) {
		case string:
			if value != "" {
				return value
			}
		case float64:
			return strconv.FormatFloat(value, 'f', -1, 64)
		case int:
			return strconv.Itoa(value)
		}
	}
	return ""
}

// coalesceStringSlice promotes a scalar value to a one-element slice and
// splits comma-separated strings into their parts.
func coalesceStringSlice(raw map[string]any, aliases []string) []string {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch value := v.(type) {
		case []string:
			if len(value) > 0 {
				return value
			}
		case []any:
			out := make([]string, 0, len(value))
			for _, item := range value {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			if strings.TrimSpace(value) == "" {
				continue
			}
			parts := strings.Split(value, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func coalesceInt(raw map[string]any, aliases []string) int {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch value := v.(type) {
		case int:
			return value
		case int64:
			return int(value)
		case float64:
			return int(value)
		case string:
			if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				return parsed
			}
		}
	}
	return 0
}

func coalesceBool(raw map[string]any, aliases []string, def bool) bool {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch value := v.(type) {
		case bool:
			return value
		case string:
			switch strings.ToLower(strings.TrimSpace(value)) {
			case "true", "1", "yes", "active", "approved":
				return true
			case "false", "0", "no", "inactive", "pending":
				return false
			}
		}
	}
	return def
}
