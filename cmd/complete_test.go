package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion(t *testing.T) {
	c := Completion()
	for _, name := range commandNames() {
		assert.Contains(t, c.Sub, name)
	}

	buy := c.Sub["buy"]
	require.NotNil(t, buy)
	assert.ElementsMatch(t, []string{"stock", "stock_us", "crypto", "gold", "forex", "fund", "cash"}, buy.Flags["type"].Predict(""))
	assert.ElementsMatch(t, []string{"TRY", "USD", "EUR", "GBP"}, buy.Flags["c"].Predict(""))

	assert.ElementsMatch(t, []string{"show", "set", "refresh"}, c.Sub["rates"].Args.Predict(""))
	assert.Contains(t, c.Sub["topic"].Args.Predict(""), "rates")
	assert.Contains(t, c.Sub["help"].Args.Predict(""), "serve")
	assert.Contains(t, c.Sub["edit"].Flags, "cmd")
}
