package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_IsSingleton(t *testing.T) {
	assert.Same(t, New(), New())
}

func TestRecordWrite(t *testing.T) {
	m := New()
	okBefore := testutil.ToFloat64(m.StoreWrites.WithLabelValues("save", "ok"))
	errBefore := testutil.ToFloat64(m.StoreWrites.WithLabelValues("save", "error"))

	m.RecordWrite("save", nil)
	m.RecordWrite("save", errors.New("disk full"))
	m.RecordWrite("save", nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(m.StoreWrites.WithLabelValues("save", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(m.StoreWrites.WithLabelValues("save", "error")))
}
