package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTeacher_FieldAliases(t *testing.T) {
	n := NewNormalizer()

	teacher, err := n.NormalizeTeacher(map[string]any{
		"full_name":    "Grace Auma",
		"emailAddress": "Grace.Auma@Example.COM",
		"phone_number": "+256700123456",
		"district":     "Lira",
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace Auma", teacher.Name)
	assert.Equal(t, "grace.auma@example.com", teacher.Email)
	assert.Equal(t, "+256700123456", teacher.Phone)
	assert.Equal(t, "Lira", teacher.Location)
	assert.True(t, teacher.Active)
}

func TestNormalizeTeacher_SubjectsFromCommaSeparatedString(t *testing.T) {
	n := NewNormalizer()

	teacher, err := n.NormalizeTeacher(map[string]any{
		"name":    "John Okello",
		"subject": "Mathematics, Physics ,Chemistry",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mathematics", "Physics", "Chemistry"}, []string(teacher.Subjects))
}

func TestNormalizeTeacher_SubjectsFromList(t *testing.T) {
	n := NewNormalizer()

	teacher, err := n.NormalizeTeacher(map[string]any{
		"name":     "John Okello",
		"subjects": []any{"English", "Literature"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"English", "Literature"}, []string(teacher.Subjects))
}

func TestNormalizeTeacher_ExperienceCoercion(t *testing.T) {
	n := NewNormalizer()

	teacher, err := n.NormalizeTeacher(map[string]any{
		"name":       "John Okello",
		"experience": "7",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, teacher.ExperienceYears)

	// JSON numbers arrive as float64.
	teacher, err = n.NormalizeTeacher(map[string]any{
		"name":             "John Okello",
		"experience_years": float64(12),
	})
	require.NoError(t, err)
	assert.Equal(t, 12, teacher.ExperienceYears)
}

func TestNormalizeTeacher_StatusStrings(t *testing.T) {
	n := NewNormalizer()

	teacher, err := n.NormalizeTeacher(map[string]any{
		"name":   "John Okello",
		"status": "pending",
	})
	require.NoError(t, err)
	assert.False(t, teacher.Active)

	teacher, err = n.NormalizeTeacher(map[string]any{
		"name":   "John Okello",
		"status": "approved",
	})
	require.NoError(t, err)
	assert.True(t, teacher.Active)
}

func TestNormalizeTeacher_NoIdentityKey(t *testing.T) {
	n := NewNormalizer()

	_, err := n.NormalizeTeacher(map[string]any{"phone": "0700123456"})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = n.NormalizeTeacher(nil)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestNormalizeTeacher_EmailOnlyIdentity(t *testing.T) {
	n := NewNormalizer()

	teacher, err := n.NormalizeTeacher(map[string]any{"email": "okello@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "okello@example.com", teacher.Email)
	assert.Empty(t, teacher.Name)
}
