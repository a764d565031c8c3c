package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorsRegistered(t *testing.T) {
	for name, c := range map[string]prometheus.Collector{
		"violations": RequiredFieldViolationsTotal,
		"checks":     RequiredFieldChecksTotal,
		"rule saves": RuleSavesTotal,
	} {
		if err := prometheus.Register(c); err == nil {
			t.Errorf("%s: expected AlreadyRegisteredError", name)
		}
	}
}

func TestRuleSavesLabels(t *testing.T) {
	c := RuleSavesTotal.WithLabelValues("create", OutcomeDuplicate)
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Fatalf("got %v want %v", got, before+1)
	}
}
