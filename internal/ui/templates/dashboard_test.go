package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderDashboard(t *testing.T, opts DashboardOptions) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, Dashboard(opts).Render(context.Background(), &b))
	return b.String()
}

func TestDashboard(t *testing.T) {
	html := renderDashboard(t, DashboardOptions{
		Regions:    []string{"East", "West"},
		Categories: []string{"Rings"},
		TopItems:   5,
		TopOutlets: 3,
	})

	assert.True(t, strings.HasPrefix(strings.ToLower(html), "<!doctype html>"))
	assert.Contains(t, html, `<option value="East" selected>East</option>`)
	assert.Contains(t, html, `data-bind="regions"`)
	assert.Contains(t, html, `id="top-items-content"`)
	assert.Contains(t, html, `id="reports-content"`)
	assert.Contains(t, html, `id="summary-content"`)
	assert.Contains(t, html, `data-init="@get(&#39;/sse/item-summary&#39;)"`, "panel loads its fragment")
	assert.Contains(t, html, `&#34;top&#34;:5`)
	assert.Contains(t, html, `data-bind="topBtq" value="3"`)
	assert.Contains(t, html, "<style>")
}

func TestDashboard_EscapesOptions(t *testing.T) {
	html := renderDashboard(t, DashboardOptions{Regions: []string{`<b>"North"</b>`}})

	assert.NotContains(t, html, "<b>")
	assert.Contains(t, html, "&lt;b&gt;&#34;North&#34;&lt;/b&gt;")
}
