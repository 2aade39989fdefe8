package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCheckin(t *testing.T) {
	before := testutil.ToFloat64(CheckinsTotal.WithLabelValues("success"))
	RecordCheckin("success")
	after := testutil.ToFloat64(CheckinsTotal.WithLabelValues("success"))
	assert.Equal(t, before+1, after)
}

func TestRecordCheckout(t *testing.T) {
	before := testutil.ToFloat64(CheckoutsTotal.WithLabelValues("forced"))
	RecordCheckout("forced")
	after := testutil.ToFloat64(CheckoutsTotal.WithLabelValues("forced"))
	assert.Equal(t, before+1, after)
}

func TestSetGymOccupancy(t *testing.T) {
	SetGymOccupancy(12, 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(GymOccupancy.WithLabelValues("12")))

	SetGymOccupancy(12, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(GymOccupancy.WithLabelValues("12")))
}

func TestRecordPoints(t *testing.T) {
	before := testutil.ToFloat64(PointsAwardedTotal.WithLabelValues("CHECKIN"))
	RecordPoints("CHECKIN", 14)
	after := testutil.ToFloat64(PointsAwardedTotal.WithLabelValues("CHECKIN"))
	assert.Equal(t, before+14, after)
}

func TestRecordStaleSweep(t *testing.T) {
	before := testutil.ToFloat64(StaleCheckinsSweptTotal)
	RecordStaleSweep(3)
	after := testutil.ToFloat64(StaleCheckinsSweptTotal)
	assert.Equal(t, before+3, after)
}
