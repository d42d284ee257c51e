package main

import "io"

// loopbackTransport is a demo-mode stand-in for a real serial port: reads
// block forever (no external VESC client exists to drive it) and writes
// are discarded. It lets the kinematic loop, motor controller, monitor,
// and recorder run without real hardware attached, as a zero-configuration
// backend for local development.
type loopbackTransport struct {
	blocked chan struct{}
}

func newLoopbackTransport() *loopbackTransport {
	return &loopbackTransport{blocked: make(chan struct{})}
}

func (l *loopbackTransport) Read(p []byte) (int, error) {
	<-l.blocked
	return 0, io.EOF
}

func (l *loopbackTransport) Write(p []byte) (int, error) {
	return io.Discard.Write(p)
}
