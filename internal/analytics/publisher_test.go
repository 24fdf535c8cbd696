package analytics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proby/internal/metrics"
	"proby/internal/models"
)

func TestPublishIgnoresOlderReadings(t *testing.T) {
	p := NewPublisher()
	temperature := metrics.FieldValue.WithLabelValues(string(models.FieldTemperature))

	newer := reading(6, map[models.Field]float64{models.FieldTemperature: 32})
	older := reading(5, map[models.Field]float64{models.FieldTemperature: 20})

	require.True(t, p.Publish(Result{Reading: newer, Alerts: Evaluate(&newer, DefaultTable())}))
	assert.False(t, p.Publish(Result{Reading: older, Alerts: Evaluate(&older, DefaultTable())}))

	assert.Equal(t, int64(6), p.Applied())
	assert.Equal(t, 32.0, testutil.ToFloat64(temperature))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ActiveAlerts))
}

func TestPublishDropsFieldsMissingFromNewest(t *testing.T) {
	p := NewPublisher()

	p.Publish(Result{Reading: reading(1, map[models.Field]float64{
		models.FieldTemperature: 20,
		models.FieldPH:          7,
	})})
	require.Equal(t, 2, testutil.CollectAndCount(metrics.FieldValue))

	p.Publish(Result{Reading: reading(2, map[models.Field]float64{models.FieldTemperature: 21})})
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.FieldValue))
}

func TestPublisherWithManyWorkers(t *testing.T) {
	const total = 200

	a := NewAnalyzer(DefaultTable(), 1000)
	a.Start(4)

	p := NewPublisher()
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(a.Results())
	}()

	for id := int64(1); id <= total; id++ {
		require.True(t, a.Submit(reading(id, map[models.Field]float64{models.FieldTemperature: float64(id)})))
	}

	require.Eventually(t, func() bool {
		return a.GetStats()["processed"].(uint64) == total
	}, 5*time.Second, time.Millisecond)

	a.Stop()
	<-done

	assert.Equal(t, int64(total), p.Applied())
	assert.Equal(t, float64(total),
		testutil.ToFloat64(metrics.FieldValue.WithLabelValues(string(models.FieldTemperature))))
}
