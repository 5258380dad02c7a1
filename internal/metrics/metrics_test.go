package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFeedback(t *testing.T) {
	before := testutil.ToFloat64(FeedbackOutcomes.WithLabelValues("ok"))
	ObserveFeedback("ok")
	assert.Equal(t, before+1, testutil.ToFloat64(FeedbackOutcomes.WithLabelValues("ok")))
}
