/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package typename

import (
	"dirpx.dev/safetype/apis"
)

// MaxNesting bounds argument-list nesting.
const MaxNesting = 64

// Parse parses s into a Name. It is pure and safe for concurrent use.
// Any malformed input yields an *apis.ResolveError of kind apis.KindParse.
func Parse(s string) (*Name, error) {
	p := parser{s: s}
	n, err := p.typeName(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.s) {
		return nil, p.fail("unexpected character")
	}
	return n, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) peek(off int) byte {
	if i := p.pos + off; i < len(p.s) {
		return p.s[i]
	}
	return 0
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

func (p *parser) fail(msg string) error {
	end := p.pos + 16
	if end > len(p.s) {
		end = len(p.s)
	}
	start := p.pos
	if start > len(p.s) {
		start = len(p.s)
	}
	return apis.NewParseError(p.pos, p.s[start:end], msg)
}

func (p *parser) expect(c byte) error {
	if p.eof() {
		return p.fail("unexpected end of input, expected '" + string(c) + "'")
	}
	if p.s[p.pos] != c {
		return p.fail("expected '" + string(c) + "'")
	}
	p.pos++
	return nil
}

func (p *parser) typeName(depth int) (*Name, error) {
	if depth > MaxNesting {
		return nil, p.fail("nesting too deep")
	}
	start := p.pos
	for !p.eof() {
		c := p.s[p.pos]
		if c == '[' || c == ',' || c == ']' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return nil, p.fail("empty type name")
	}
	n := &Name{Name: p.s[start:p.pos]}

	// '[' opens an argument list only when directly followed by another '['.
	if p.peek(0) == '[' && p.peek(1) == '[' {
		args, err := p.argList(depth)
		if err != nil {
			return nil, err
		}
		n.Args = args
	}
	for p.peek(0) == '[' {
		rank, err := p.arrayMarker()
		if err != nil {
			return nil, err
		}
		n.Layout = append(n.Layout, rank)
	}
	if p.peek(0) == ',' {
		p.extension()
	}
	return n, nil
}

func (p *parser) argList(depth int) ([]*Name, error) {
	p.pos++ // outer '['
	var args []*Name
	for {
		if err := p.expect('['); err != nil {
			return nil, err
		}
		a, err := p.typeName(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.peek(0) != ',' {
			break
		}
		p.pos++
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) arrayMarker() (int, error) {
	p.pos++ // '['
	rank := 1
	for p.peek(0) == ',' {
		rank++
		p.pos++
	}
	if p.eof() {
		return 0, p.fail("unterminated '['")
	}
	if p.s[p.pos] != ']' {
		return 0, p.fail("expected ']' or ',' in array marker")
	}
	p.pos++
	return rank, nil
}

// extension consumes trailing qualification data up to the next ']' or the
// end of input. Its content is never inspected.
func (p *parser) extension() {
	for !p.eof() && p.s[p.pos] != ']' {
		p.pos++
	}
}
