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

// Package xlog is leveled firmware logging on top of the standard log
// package. Level 1 is controller registration and timeouts, level 3 is
// init progress, level 6.. is protocol noise that only matters when
// chasing a misbehaving device.
package xlog

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

var level int32 = 1

// SetLevel sets the highest level that still reaches the log output.
func SetLevel(n int) {
	atomic.StoreInt32(&level, int32(n))
}

func Level() int {
	return int(atomic.LoadInt32(&level))
}

// Mute drops all output, used by terminal front-ends that own the screen.
func Mute(b bool) {
	if b {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}
}

func Printf(lvl int, format string, a ...interface{}) {
	if lvl <= Level() {
		log.Printf(format, a...)
	}
}
