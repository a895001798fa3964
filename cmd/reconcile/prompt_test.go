package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/settlement-reconciler/internal/config"
)

func TestPrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("  typed  \n\n"), &out)

	v, err := p.ask("Report", "")
	require.NoError(t, err)
	assert.Equal(t, "typed", v)

	v, err = p.ask("Report", "last.csv")
	require.NoError(t, err)
	assert.Equal(t, "last.csv", v, "blank answer keeps the current value")
	assert.Contains(t, out.String(), "Report [last.csv]: ")
}

func TestPrompter_AskWithoutTrailingNewline(t *testing.T) {
	p := newPrompter(strings.NewReader("final"), &bytes.Buffer{})

	v, err := p.ask("Product", "")
	require.NoError(t, err)
	assert.Equal(t, "final", v)

	_, err = p.ask("Product", "")
	assert.Error(t, err, "input exhausted")
}

func TestPrompter_FillMissing(t *testing.T) {
	p := newPrompter(strings.NewReader("report.csv\nprod_ammo\n"), &bytes.Buffer{})
	cfg := config.Default()

	require.NoError(t, p.fillMissing(cfg))
	assert.Equal(t, "report.csv", cfg.ReportPath)
	assert.Equal(t, "prod_ammo", cfg.ExcludedProductID)
	assert.Empty(t, cfg.Missing())
}

func TestPrompter_AskSecret(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader(""), &out)
	p.readSecret = func() (string, error) { return "sk_hidden", nil }

	v, err := p.askSecret("API key")
	require.NoError(t, err)
	assert.Equal(t, "sk_hidden", v)
	assert.Equal(t, "API key: ", out.String())
}
