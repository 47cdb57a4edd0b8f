// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

// A Socket maps wire names to wire numbers in a circuit. All parts of a
// circuit share a single flat namespace: parts using the same wire name are
// connected.
//
type Socket struct {
	c *Circuit
}

// Wire returns the wire number allocated to the given name. If no such wire
// exists, a new one is allocated.
//
func (s *Socket) Wire(name string) int {
	n, ok := s.c.names[name]
	if !ok {
		n = s.c.allocWire()
		s.c.names[name] = n
	}
	return n
}

// Clk returns the clock wire number.
//
func (s *Socket) Clk() int { return cstClk }
