// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDBQueryCountsErrors(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("find", "tours"))

	ObserveDBQuery("find", "tours", time.Now(), nil)
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("find", "tours")); got != before {
		t.Errorf("error counter incremented on success: %v", got)
	}

	ObserveDBQuery("find", "tours", time.Now(), errors.New("boom"))
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("find", "tours")); got != before+1 {
		t.Errorf("error counter = %v, want %v", got, before+1)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/tours", "200"))

	RecordAPIRequest("GET", "/api/v1/tours", 200, 25*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/tours", "200"))
	if after != before+1 {
		t.Errorf("request counter = %v, want %v", after, before+1)
	}
}

func TestAuthAttemptLabels(t *testing.T) {
	for _, outcome := range []string{"success", "bad_credentials", "locked_out", "inactive"} {
		AuthAttempts.WithLabelValues(outcome).Inc()
		if got := testutil.ToFloat64(AuthAttempts.WithLabelValues(outcome)); got < 1 {
			t.Errorf("AuthAttempts[%s] = %v, want >= 1", outcome, got)
		}
	}
}
