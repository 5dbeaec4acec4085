package statemachine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var concrete = []State{NoImage, ImageLoaded, Processing, TemplateReady}

func TestState_RootIsSuperStateOfAll(t *testing.T) {
	for _, s := range concrete {
		assert.True(t, CreateTemplate.IsSuperStateOf(s), "root should contain %s", s)
		assert.True(t, s.IsSubStateOf(CreateTemplate), "%s should be under root", s)
		assert.False(t, CreateTemplate.IsSubStateOf(s), "root should not be under %s", s)
	}
}

func TestState_Reflexive(t *testing.T) {
	for _, s := range append([]State{CreateTemplate}, concrete...) {
		assert.True(t, s.IsSuperStateOf(s), "%s", s)
		assert.True(t, s.IsSubStateOf(s), "%s", s)
	}
}

func TestState_SiblingsAreUnrelated(t *testing.T) {
	for _, a := range concrete {
		for _, b := range concrete {
			if a == b {
				continue
			}
			assert.False(t, a.IsSuperStateOf(b), "%s ⊇ %s", a, b)
			assert.False(t, a.IsSubStateOf(b), "%s ⊆ %s", a, b)
		}
	}
}

func TestState_Unset(t *testing.T) {
	for _, s := range append([]State{Unset, CreateTemplate}, concrete...) {
		assert.True(t, s.IsSuperStateOf(Unset), "%s should contain Unset", s)
		assert.False(t, s.IsSubStateOf(Unset), "%s should not be under Unset", s)
	}
	assert.False(t, Unset.IsSuperStateOf(NoImage))
}

func TestState_OutOfRange(t *testing.T) {
	bogus := State(200)
	assert.False(t, bogus.Valid())
	assert.False(t, CreateTemplate.IsSuperStateOf(bogus))
	assert.False(t, bogus.IsSubStateOf(CreateTemplate))
	assert.Equal(t, "State(200)", bogus.String())
	assert.Equal(t, Unset, bogus.Parent())
}

func TestState_Parent(t *testing.T) {
	assert.Equal(t, Unset, CreateTemplate.Parent())
	for _, s := range concrete {
		assert.Equal(t, CreateTemplate, s.Parent())
	}
}

func TestState_TextRoundTrip(t *testing.T) {
	data, err := json.Marshal(map[string]State{"state": TemplateReady})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"TemplateReady"}`, string(data))

	var decoded map[string]State
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TemplateReady, decoded["state"])
}

func TestParseState_Unknown(t *testing.T) {
	_, err := ParseState("Exporting")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Exporting")
}
