package port

import (
	"fmt"
	"net"
)

// Scanner checks whether specific ports are available on the host machine.
//
// The struct is currently stateless, but is defined as a struct (rather
// than bare functions) so that future options (e.g., bind address) can be
// added without breaking the API. It also makes the Scanner injectable as
// a dependency, which improves testability of callers.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsPortAvailable checks whether a single TCP port is free on the host.
//
// It attempts net.Listen on all interfaces (":port" rather than
// "127.0.0.1:port") because Docker publishes ports on 0.0.0.0, so the
// same address space must be checked to avoid false positives. If the
// listen succeeds the port is free; the listener is closed immediately
// since only availability was being tested.
func (s *Scanner) IsPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	defer func() { _ = listener.Close() }()
	return true
}

// OccupiedPorts returns the subset of the given ports that are currently
// bound on the host, preserving input order. Used by the launcher's
// pre-flight check to warn about ports that Compose will fail to publish.
func (s *Scanner) OccupiedPorts(ports []int) []int {
	var occupied []int
	for _, p := range ports {
		if !s.IsPortAvailable(p) {
			occupied = append(occupied, p)
		}
	}
	return occupied
}
