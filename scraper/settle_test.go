package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedDelaySleepsOnce(t *testing.T) {
	var slept []time.Duration
	FixedDelay{Delay: 3 * time.Second, Sleep: func(d time.Duration) { slept = append(slept, d) }}.
		Settle(&fakeBrowser{}, CSS("div"))

	assert.Equal(t, []time.Duration{3 * time.Second}, slept)
}

func TestWaitForContainerReturnsWhenPresent(t *testing.T) {
	b := &fakeBrowser{pages: [][]Element{{listing("t", "", "", "l")}}}
	var slept int
	WaitForContainer{Timeout: time.Second, Poll: 100 * time.Millisecond, Sleep: func(time.Duration) { slept++ }}.
		Settle(b, CSS("div.result"))

	assert.Zero(t, slept)
}

func TestWaitForContainerGivesUpAfterTimeout(t *testing.T) {
	b := &fakeBrowser{pages: [][]Element{{}}}
	var slept int
	WaitForContainer{Timeout: time.Second, Poll: 250 * time.Millisecond, Sleep: func(time.Duration) { slept++ }}.
		Settle(b, CSS("div.result"))

	assert.Equal(t, 4, slept)
}
