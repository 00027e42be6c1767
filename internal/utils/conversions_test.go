package utils_test

import (
	"testing"

	"github.com/jrsteele09/pcrs-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestFlattenMessages(t *testing.T) {
	require.Equal(t, "required", utils.FlattenMessages([]any{"required"}))
	require.Equal(t, "too short; needs a digit", utils.FlattenMessages([]any{"too short", "needs a digit"}))
	require.Equal(t, "plain", utils.FlattenMessages("plain"))
	require.Equal(t, "one", utils.FlattenMessages([]string{"one"}))
	require.Equal(t, "", utils.FlattenMessages(42))
}

func TestValueAndPtr(t *testing.T) {
	var missing *string
	require.Equal(t, "", utils.Value(missing))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}
