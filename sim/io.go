// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package sim

// Input returns a part driving the named wire with the value returned by f.
// f is called on every step.
//
func Input(name string, f func() uint64) Part {
	return Part{
		Name: "Input(" + name + ")",
		Mount: func(s *Socket) []Component {
			w := s.Wire(name)
			return []Component{
				func(c *Circuit) { c.Set(w, f()) },
			}
		},
	}
}

// Output returns a probe calling f with the value of the named wire on every
// step.
//
func Output(name string, f func(uint64)) Part {
	return Part{
		Name: "Output(" + name + ")",
		Mount: func(s *Socket) []Component {
			w := s.Wire(name)
			return []Component{
				func(c *Circuit) { f(c.Get(w)) },
			}
		},
	}
}

// Bool converts a boolean to a wire value.
//
func Bool(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
