package scraper

import "time"

// SettlePolicy waits for asynchronous page content after a navigation action.
type SettlePolicy interface {
	Settle(b Browser, container Locator)
}

// FixedDelay waits a fixed duration regardless of page state.
type FixedDelay struct {
	Delay time.Duration
	Sleep func(time.Duration)
}

func (f FixedDelay) Settle(Browser, Locator) {
	if f.Delay <= 0 {
		return
	}
	sleepFn(f.Sleep)(f.Delay)
}

// WaitForContainer polls until the container locator matches at least one
// element or Timeout elapses. A page that never renders a listing is not an
// error here; the harvester will simply extract nothing from it.
type WaitForContainer struct {
	Timeout time.Duration
	Poll    time.Duration
	Sleep   func(time.Duration)
}

func (w WaitForContainer) Settle(b Browser, container Locator) {
	poll := w.Poll
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	sleep := sleepFn(w.Sleep)

	for waited := time.Duration(0); ; waited += poll {
		if els, err := b.FindElements(container); err == nil && len(els) > 0 {
			return
		}
		if waited >= w.Timeout {
			return
		}
		sleep(poll)
	}
}

func sleepFn(fn func(time.Duration)) func(time.Duration) {
	if fn == nil {
		return time.Sleep
	}
	return fn
}
