// Copyright ©2025 The Blasflow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blasflow captures a dependency graph of BLAS operations into a
// single replayable execution graph.
//
// Instead of dispatching each vector or matrix routine as an individual
// call, the caller describes the computation once as a task graph, lets
// blasflow assign the tasks to a small pool of execution streams, and
// receives one CapturedGraph that can be launched any number of times
// with a single call. Independent operations are placed on different
// streams and run concurrently; dependent operations are ordered with
// event barriers regardless of which streams they landed on.
//
// The native numeric library is column-major. Every matrix method has a
// C-prefixed twin (CGemm, CGeam, ...) that accepts row-major operands
// and rewrites the call through the layout adapter, so callers with
// C-ordered data never transpose by hand.
//
// Example usage:
//
//	h := blasflow.NewHandle()
//	cap := blasflow.NewCapturer(h)
//	defer cap.Close()
//
//	d_x, _ := blasflow.Malloc(n * 4)
//	d_r, _ := blasflow.Malloc(4)
//
//	nrm, _ := cap.Nrm2(blasflow.Float32, n, d_x, 1, d_r)
//	scal, _ := cap.Scal(blasflow.Float32, n, d_alpha, d_x, 1)
//	nrm.Precede(scal)
//
//	g, _ := cap.Capture()
//	for i := 0; i < iters; i++ {
//		g.Launch()
//		g.Wait()
//	}
//
// A Capturer is not safe for concurrent use; graph construction and
// capture are single-threaded by contract.
package blasflow
