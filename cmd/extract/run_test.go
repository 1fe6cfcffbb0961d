package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/extraction"
)

func TestRun_Offline(t *testing.T) {
	report, err := Run(context.Background(), nil, "Nimeuza nyanya 10 kwa shilingi 200", false)
	require.NoError(t, err)

	assert.Equal(t, extraction.TypeSale, report.Candidate.TransactionType)
	assert.Equal(t, 200.0, report.Candidate.TotalAmount)
	assert.True(t, report.StrongIntent)
	assert.Nil(t, report.Transaction)
}

func TestRun_Confirm(t *testing.T) {
	report, err := Run(context.Background(), nil, "Nimeuza nyanya 10 kwa shilingi 200", true)
	require.NoError(t, err)

	require.NotNil(t, report.Transaction)
	assert.True(t, report.Transaction.Success)
	assert.Equal(t, "200", report.Transaction.Transaction.Amount.String())
}

func TestRun_EmptyMessage(t *testing.T) {
	_, err := Run(context.Background(), nil, "   ", false)
	assert.Error(t, err)
}

func TestRootCmd_PrintsJSON(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--offline", "Nimeuza", "nyanya", "10", "kwa", "shilingi", "200"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var printed map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, "Nimeuza nyanya 10 kwa shilingi 200", printed["message"])
	assert.Equal(t, true, printed["strongIntent"])

	candidate, ok := printed["candidate"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sale", candidate["transactionType"])
}

func TestRootCmd_RequiresMessage(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"--offline"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
