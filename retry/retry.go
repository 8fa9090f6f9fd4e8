// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package retry contains utilities for implementing retry logic.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/unifile/unifile/errors"
)

// A Policy is an interface that abstracts retry policies. Typically
// users will not call methods directly on a Policy but rather use the
// package function retry.Wait.
type Policy interface {
	// Retry tells whether a new retry should be attempted, and after how
	// long.
	Retry(retry int) (bool, time.Duration)
}

// Wait queries the provided policy at the provided retry number and
// sleeps until the next try should be attempted. Wait returns an error
// if the policy prohibits further tries, if the context was canceled, or
// if its deadline would run out while waiting for the next try.
func Wait(ctx context.Context, policy Policy, retry int) error {
	keepgoing, wait := policy.Retry(retry)
	if !keepgoing {
		return errors.E(errors.TooManyTries, fmt.Sprintf("gave up after %d tries", retry))
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
		return errors.E(errors.Timeout, "ran out of time while waiting for retry")
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type backoff struct {
	factor       float64
	initial, max time.Duration
}

// Backoff returns a Policy that waits for the amount of time specified
// by parameter initial on the first try; on each subsequent try this
// value is multiplied by the provided factor, up to the max duration.
func Backoff(initial, max time.Duration, factor float64) Policy {
	return &backoff{
		initial: initial,
		max:     max,
		factor:  factor,
	}
}

func (b *backoff) Retry(retries int) (bool, time.Duration) {
	wait := time.Duration(float64(b.initial) * math.Pow(b.factor, float64(retries)))
	if wait > b.max {
		wait = b.max
	}
	return true, wait
}

type jitter struct {
	policy Policy
	frac   float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// Jitter returns a policy that randomizes the wait time of the provided
// policy. With frac == f, the wait time is drawn uniformly from
// [(1-f)*wait, wait]. Jitter avoids thundering herds when many clients
// back off from the same throttling event.
func Jitter(policy Policy, frac float64) Policy {
	if frac <= 0 || frac > 1 {
		panic(fmt.Sprintf("retry.Jitter: invalid fraction %f", frac))
	}
	return &jitter{
		policy: policy,
		frac:   frac,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (j *jitter) Retry(retries int) (bool, time.Duration) {
	keepgoing, wait := j.policy.Retry(retries)
	if !keepgoing || wait <= 0 {
		return keepgoing, wait
	}
	j.mu.Lock()
	r := j.rnd.Float64()
	j.mu.Unlock()
	wait = time.Duration(float64(wait) * (1 - j.frac*r))
	return true, wait
}

type maxtries struct {
	policy Policy
	max    int
}

// MaxTries returns a policy that enforces a maximum number of attempts.
// The provided policy is invoked when the current number of tries is
// within the permissible limit. If policy is nil, the returned policy
// will permit an immediate retry when the number of tries is within the
// allowable limits.
func MaxTries(policy Policy, n int) Policy {
	if n < 1 {
		panic("retry.MaxTries: n < 1")
	}
	return &maxtries{policy, n - 1}
}

func (m *maxtries) Retry(retries int) (bool, time.Duration) {
	if retries > m.max {
		return false, time.Duration(0)
	}
	if m.policy != nil {
		return m.policy.Retry(retries)
	}
	return true, time.Duration(0)
}
