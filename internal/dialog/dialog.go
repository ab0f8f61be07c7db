// Package dialog models modal confirmation and alert prompts that resolve
// exactly once no matter how fast the user mashes the controls.
package dialog

import "sync"

// Confirm is a yes/no prompt. The first of Accept, Cancel or Dismiss wins;
// later calls are ignored.
type Confirm struct {
	once sync.Once
	done chan bool
}

func NewConfirm() *Confirm {
	return &Confirm{done: make(chan bool, 1)}
}

// Accept resolves the prompt to true.
func (c *Confirm) Accept() { c.resolve(true) }

// Cancel resolves the prompt to false.
func (c *Confirm) Cancel() { c.resolve(false) }

// Dismiss resolves the prompt to false. Backdrop clicks and the escape key
// both land here.
func (c *Confirm) Dismiss() { c.resolve(false) }

func (c *Confirm) resolve(v bool) {
	c.once.Do(func() {
		c.done <- v
		close(c.done)
	})
}

// Done yields the single resolution value.
func (c *Confirm) Done() <-chan bool { return c.done }

// Alert is an acknowledge-only prompt.
type Alert struct {
	once sync.Once
	done chan struct{}
}

func NewAlert() *Alert {
	return &Alert{done: make(chan struct{})}
}

// Acknowledge closes the prompt. Repeated calls are ignored.
func (a *Alert) Acknowledge() {
	a.once.Do(func() { close(a.done) })
}

// Done is closed once the prompt has been acknowledged.
func (a *Alert) Done() <-chan struct{} { return a.done }
