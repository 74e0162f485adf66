package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complykit/complykit/internal/domain"
)

func TestNewIdentifier_Normalizes(t *testing.T) {
	id := domain.NewIdentifier(" Maven/Central ", " org.example ", "lib", " 1.0 ")
	assert.Equal(t, "MavenCentral", id.Type)
	assert.Equal(t, "org.example", id.Namespace)
	assert.Equal(t, "1.0", id.Version)
}

func TestNewIdentifier_ComposesUnicode(t *testing.T) {
	decomposed := domain.NewIdentifier("NPM", "", "cafe\u0301", "1")
	composed := domain.NewIdentifier("NPM", "", "caf\u00e9", "1")
	assert.Equal(t, composed, decomposed)
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Identifier
	}{
		{"Maven:org.a:b:1.0", domain.Identifier{Type: "Maven", Namespace: "org.a", Name: "b", Version: "1.0"}},
		{"NPM::left-pad", domain.Identifier{Type: "NPM", Name: "left-pad"}},
		{"Go:github.com/x:y:v1:extra", domain.Identifier{Type: "Go", Namespace: "github.com/x", Name: "y", Version: "v1:extra"}},
		{"", domain.Identifier{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseIdentifier(tt.in))
		})
	}
}

func TestIdentifier_CoordinatesRoundTrip(t *testing.T) {
	id := domain.NewIdentifier("Maven", "org.a", "b", "1.0")
	assert.Equal(t, "Maven:org.a:b:1.0", id.Coordinates())
	assert.Equal(t, id, domain.ParseIdentifier(id.Coordinates()))
	assert.True(t, domain.Identifier{}.IsEmpty())
	assert.False(t, id.IsEmpty())
}

func TestIdentifier_Compare(t *testing.T) {
	a := domain.NewIdentifier("Maven", "a", "x", "1")
	b := domain.NewIdentifier("Maven", "a", "x", "2")
	c := domain.NewIdentifier("NPM", "", "a", "1")

	assert.Negative(t, a.Compare(b))
	assert.Positive(t, c.Compare(b))
	assert.Zero(t, a.Compare(a))
}

func TestIdentifier_TextRoundTrip(t *testing.T) {
	id := domain.NewIdentifier("Maven", "org.a", "b", "1.0")
	text, err := id.MarshalText()
	require.NoError(t, err)

	var got domain.Identifier
	require.NoError(t, got.UnmarshalText(text))
	assert.Equal(t, id, got)
}

func TestSeverity_OrderAndNames(t *testing.T) {
	assert.True(t, domain.SeverityError.AtLeast(domain.SeverityWarning))
	assert.True(t, domain.SeverityWarning.AtLeast(domain.SeverityWarning))
	assert.False(t, domain.SeverityHint.AtLeast(domain.SeverityWarning))
	assert.Equal(t, []domain.Severity{domain.SeverityHint, domain.SeverityWarning, domain.SeverityError}, domain.AllSeverities)

	for _, s := range domain.AllSeverities {
		parsed, err := domain.ParseSeverity(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
}

func TestParseSeverity_CaseInsensitive(t *testing.T) {
	s, err := domain.ParseSeverity(" warning ")
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityWarning, s)
}

func TestParseSeverity_Unknown(t *testing.T) {
	_, err := domain.ParseSeverity("FATAL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown severity")
}

func TestSeverity_MarshalTextRejectsOutOfRange(t *testing.T) {
	_, err := domain.Severity(7).MarshalText()
	assert.Error(t, err)
}
