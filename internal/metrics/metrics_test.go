package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersAccumulate(t *testing.T) {
	Init()

	before := testutil.ToFloat64(urlsProcessedTotal.WithLabelValues("done"))
	URLProcessed("done")
	URLProcessed("done")
	after := testutil.ToFloat64(urlsProcessedTotal.WithLabelValues("done"))
	require.Equal(t, before+2, after)

	beforeSaved := testutil.ToFloat64(emailsSavedTotal.WithLabelValues("CROSSREF_WEB"))
	EmailSaved("CROSSREF_WEB")
	afterSaved := testutil.ToFloat64(emailsSavedTotal.WithLabelValues("CROSSREF_WEB"))
	require.Equal(t, beforeSaved+1, afterSaved)
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	require.NotPanics(t, Init)
	require.NotPanics(t, func() { RunDuration(2 * time.Second) })
}
