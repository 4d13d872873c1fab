package dynobj_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/gad-lang/dynobj"
)

func TestDiffAttributes(t *testing.T) {
	h := THost.New("web1", Dict{"address": Str("10.0.0.1")})

	d, err := DiffAttributes(h)
	require.NoError(t, err)
	require.Empty(t, d)

	require.NoError(t, h.ModifyAttribute("address", Str("10.0.0.2")))
	require.NoError(t, h.ModifyAttribute("notes", Str("maintenance")))
	d, err = DiffAttributes(h)
	require.NoError(t, err)
	require.Contains(t, d, `--- <Host:"web1"> configured`)
	require.Contains(t, d, `+++ <Host:"web1"> effective`)
	require.Contains(t, d, "-address = \"10.0.0.1\"\n")
	require.Contains(t, d, "+address = \"10.0.0.2\"\n")
	require.Contains(t, d, "+notes = \"maintenance\"\n")
	// one line of context around each change
	require.Contains(t, d, " check_interval = 300d\n")
	require.Contains(t, d, " retry_interval = 60d\n")
	require.NotContains(t, d, "enable_notifications")

	// an override equal to the configured value changes nothing
	require.NoError(t, h.RestoreAttribute("notes"))
	require.NoError(t, h.ModifyAttribute("address", Str("10.0.0.1")))
	d, err = DiffAttributes(h)
	require.NoError(t, err)
	require.Empty(t, d)
}
