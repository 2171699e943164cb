// internal/render/renderer_test.go
package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
)

func sampleFields() Fields {
	return Fields{
		"document_title":    "Internship Offer Letter",
		"issuer_name":       "CodeSprint Labs",
		"issuer_location":   "Ahmedabad, India",
		"student_name":      "Asha Patel",
		"student_email":     "asha@example.com",
		"internship_title":  "Backend Engineering Internship",
		"internship_domain": "Backend",
		"start_date":        "1 September 2026",
		"end_date":          "27 October 2026",
		"duration_weeks":    "8",
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewHTMLRenderer()

	first, err := r.Render(models.DocumentTypeOfferLetter, sampleFields())
	require.NoError(t, err)
	second, err := r.Render(models.DocumentTypeOfferLetter, sampleFields())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), "Asha Patel")
	assert.Contains(t, string(first), "Internship Offer Letter")
}

func TestAllDocumentTypesHaveTemplates(t *testing.T) {
	r := NewHTMLRenderer()

	for _, documentType := range models.AllDocumentTypes {
		content, err := r.Render(documentType, sampleFields())
		require.NoError(t, err, "document type %s", documentType)
		assert.NotEmpty(t, content)
	}
}

func TestRenderUnknownType(t *testing.T) {
	r := NewHTMLRenderer()

	_, err := r.Render(models.DocumentType("transcript"), sampleFields())
	assert.Error(t, err)
}

func TestRenderEscapesHTML(t *testing.T) {
	r := NewHTMLRenderer()

	fields := sampleFields()
	fields["student_name"] = `<script>alert("x")</script>`

	content, err := r.Render(models.DocumentTypeOfferLetter, fields)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "<script>")
}

func TestFieldsHashStableOrder(t *testing.T) {
	a := Fields{"x": "1", "y": "2", "z": "3"}
	b := Fields{"z": "3", "x": "1", "y": "2"}

	assert.Equal(t, a.Hash(), b.Hash())
	assert.Len(t, a.Hash(), 64)
}

func TestFieldsHashSensitivity(t *testing.T) {
	base := Fields{"student_name": "Asha Patel", "marks": "46"}

	changedValue := Fields{"student_name": "Asha Patel", "marks": "45"}
	assert.NotEqual(t, base.Hash(), changedValue.Hash())

	extraKey := Fields{"student_name": "Asha Patel", "marks": "46", "grade": "A+"}
	assert.NotEqual(t, base.Hash(), extraKey.Hash())
}

func TestFieldsPairsSorted(t *testing.T) {
	f := Fields{"b": "2", "a": "1", "c": "3"}

	pairs := f.Pairs()
	require.Len(t, pairs, 3)
	assert.Equal(t, "a", pairs[0].Key)
	assert.Equal(t, "b", pairs[1].Key)
	assert.Equal(t, "c", pairs[2].Key)
}
