package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoiceRefUnmarshal(t *testing.T) {
	var ref ChoiceRef
	require.NoError(t, json.Unmarshal([]byte(`42`), &ref))
	assert.False(t, ref.IsCode())
	assert.Equal(t, int64(42), ref.ID())

	require.NoError(t, json.Unmarshal([]byte(`"42"`), &ref))
	assert.True(t, ref.IsCode())
	assert.Equal(t, "42", ref.Code())

	assert.Error(t, json.Unmarshal([]byte(`4.2`), &ref))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &ref))
}

func TestChoiceRefsUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ChoiceRefs
	}{
		{"single id", `7`, ChoiceRefs{ByID(7)}},
		{"single code", `"yes"`, ChoiceRefs{ByCode("yes")}},
		{"mixed list", `[1, "b"]`, ChoiceRefs{ByID(1), ByCode("b")}},
		{"empty list", `[]`, ChoiceRefs{}},
		{"null", `null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				Choice ChoiceRefs `json:"choice"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"choice":`+tt.in+`}`), &got))
			assert.Equal(t, tt.want, got.Choice)
		})
	}
}

func TestChoiceRefMarshal(t *testing.T) {
	b, err := json.Marshal([]ChoiceRef{ByID(3), ByCode("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `[3, "x"]`, string(b))
	assert.Equal(t, "3", ByID(3).String())
}
