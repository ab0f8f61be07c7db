package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolution(t *testing.T, c *Confirm) bool {
	t.Helper()
	select {
	case v := <-c.Done():
		return v
	case <-time.After(time.Second):
		t.Fatal("confirm never resolved")
		return false
	}
}

func TestConfirmAccept(t *testing.T) {
	c := NewConfirm()
	c.Accept()
	assert.True(t, resolution(t, c))
}

func TestConfirmCancel(t *testing.T) {
	c := NewConfirm()
	c.Cancel()
	assert.False(t, resolution(t, c))
}

func TestConfirmDismiss(t *testing.T) {
	c := NewConfirm()
	c.Dismiss()
	assert.False(t, resolution(t, c))
}

func TestConfirmResolvesExactlyOnce(t *testing.T) {
	c := NewConfirm()
	// rapid repeated input: only the first resolution counts
	c.Cancel()
	c.Accept()
	c.Dismiss()
	c.Accept()
	assert.False(t, resolution(t, c))

	// channel is closed after resolution, later reads see the zero value
	v, ok := <-c.Done()
	assert.False(t, v)
	assert.False(t, ok)
}

func TestAlertAcknowledge(t *testing.T) {
	a := NewAlert()
	a.Acknowledge()
	a.Acknowledge()
	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("alert never acknowledged")
	}
}

func TestAlertPendingUntilAcknowledged(t *testing.T) {
	a := NewAlert()
	select {
	case <-a.Done():
		require.Fail(t, "alert resolved without acknowledgement")
	default:
	}
	a.Acknowledge()
	<-a.Done()
}
