/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

// Package scheduler provides the cooperative task primitives the
// firmware drivers are written against: spawn a fire-and-forget probe
// task, yield inside a polling loop, check a monotonic deadline.
// Hardware polling must never monopolize wall-clock time, so every
// busy-wait in the drivers calls Yield between port reads.
package scheduler

import (
	"runtime"
	"sync"
	"time"

	"github.com/go-pcboot/pcboot/firmware/xlog"
)

// Yield hands the rest of the time slice to other runnable tasks.
func Yield() {
	runtime.Gosched()
}

// Deadline is an absolute point on the monotonic clock.
type Deadline struct {
	end time.Time
}

// FutureDeadline returns a deadline d from now.
func FutureDeadline(d time.Duration) Deadline {
	return Deadline{end: time.Now().Add(d)}
}

// Expired reports whether the deadline has passed.
func (d Deadline) Expired() bool {
	return !time.Now().Before(d.end)
}

// Group tracks spawned tasks so boundaries that need synchronous
// results (drive enumeration before boot-device selection) can drain
// them. Tasks themselves are best-effort and must not fail the group.
type Group struct {
	wg sync.WaitGroup
}

// Spawn launches fn as an independent task. The name only shows up in
// trace logging.
func (g *Group) Spawn(name string, fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		xlog.Printf(6, "task start: %s", name)
		fn()
		xlog.Printf(6, "task done: %s", name)
	}()
}

// Wait blocks until every spawned task has finished.
func (g *Group) Wait() {
	g.wg.Wait()
}
