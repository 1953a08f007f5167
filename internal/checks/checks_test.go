package checks_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/inspector/internal/checks"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want checks.Answer
	}{
		{"Pass", checks.Pass},
		{"accept", checks.Pass},
		{" p ", checks.Pass},
		{"TRUE", checks.Pass},
		{"Fail", checks.Fail},
		{"REJECT", checks.Fail},
		{"no", checks.Fail},
		{"N/A", checks.NA},
		{"Not Applicable", checks.NA},
		{"", checks.NotAnswered},
		{"not answered", checks.NotAnswered},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := checks.ParseAnswer(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnswerInvalid(t *testing.T) {
	_, err := checks.ParseAnswer("maybe")
	assert.ErrorIs(t, err, checks.ErrInvalidAnswer)
}

func TestAnswerPredicates(t *testing.T) {
	assert.True(t, checks.Fail.IsReject())
	assert.False(t, checks.Pass.IsReject())
	assert.False(t, checks.NA.IsReject())
	assert.False(t, checks.NotAnswered.IsReject())

	assert.True(t, checks.NA.Answered())
	assert.False(t, checks.NotAnswered.Answered())
}

func TestAnswerUnmarshal(t *testing.T) {
	var payload struct {
		A checks.Answer `json:"a"`
		B checks.Answer `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"REJECT","b":null}`), &payload))

	assert.Equal(t, checks.Fail, payload.A)
	assert.Equal(t, checks.NotAnswered, payload.B)

	err := json.Unmarshal([]byte(`{"a":"sometimes"}`), &payload)
	assert.ErrorIs(t, err, checks.ErrInvalidAnswer)
}

func TestParseType(t *testing.T) {
	got, err := checks.ParseType("Visual")
	require.NoError(t, err)
	assert.Equal(t, checks.Visual, got)
	assert.True(t, got.Sampled())
	assert.False(t, checks.Document.Sampled())
	assert.Equal(t, "Dimension", checks.Dimension.Label())

	_, err = checks.ParseType("thermal")
	assert.ErrorIs(t, err, checks.ErrInvalidType)
}

func TestTypesOrder(t *testing.T) {
	assert.Equal(t,
		[]checks.Type{checks.Document, checks.Visual, checks.Dimension, checks.Functional},
		checks.Types(),
	)
}
