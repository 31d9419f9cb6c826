package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_MetricTag_ListAll(t *testing.T) {
	var metricTag MetricTag
	require.Len(t, metricTag.ListAll(), 5)
}
