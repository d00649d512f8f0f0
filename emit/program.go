package emit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/typesys"
)

// Op is an instruction opcode.
type Op int

const (
	OpNewObj Op = iota // construct an object
	OpLdc              // load a constant
	OpLdNull           // load null
	OpLdProp           // load a property handle
	OpLdPath           // load a property path
	OpBox              // box a value type
	OpCall             // call a setter accessor
	OpDefer            // hand a literal to runtime binding
	OpAdd              // add the value to the enclosing object's content
	OpScope            // enter a target type scope
)

var opNames = [...]string{
	OpNewObj: "newobj",
	OpLdc:    "ldc",
	OpLdNull: "ldnull",
	OpLdProp: "ldprop",
	OpLdPath: "ldpath",
	OpBox:    "box",
	OpCall:   "call",
	OpDefer:  "defer",
	OpAdd:    "add",
	OpScope:  "scope",
}

func (o Op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}

	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// Instruction is one emitted operation.
type Instruction struct {
	Op      Op
	Operand string
	// Accessor indexes Program.Accessors for OpCall.
	Accessor int
	Depth    int
	Pos      markup.Position
}

func (i Instruction) String() string {
	s := i.Op.String()

	if i.Op == OpCall {
		s += " #" + strconv.Itoa(i.Accessor)
	}

	if i.Operand != "" {
		s += " " + i.Operand
	}

	return s
}

// Program is the instruction listing of one tree.
type Program struct {
	Name string
	// Accessors holds each distinct setter overload called by Code.
	Accessors []typesys.Setter
	Code      []Instruction
}

// accessor returns the index of s in p.Accessors, appending it if no equal
// overload is present.
func (p *Program) accessor(s typesys.Setter) int {
	for i, a := range p.Accessors {
		if a.Equal(s) {
			return i
		}
	}

	p.Accessors = append(p.Accessors, s)

	return len(p.Accessors) - 1
}

// WriteTo writes the listing of p to w.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: bufio.NewWriter(w)}

	fmt.Fprintf(cw, ".program %s\n", p.Name)
	fmt.Fprintf(cw, ".accessors %d\n", len(p.Accessors))

	for i, a := range p.Accessors {
		fmt.Fprintf(cw, "  #%-3d %s\n", i, a)
	}

	fmt.Fprintf(cw, ".code %d\n", len(p.Code))

	for _, in := range p.Code {
		line := strings.Repeat("  ", in.Depth+1) + in.String()
		if in.Pos.IsValid() {
			line = fmt.Sprintf("%-48s ; %s", line, in.Pos)
		}

		fmt.Fprintln(cw, line)
	}

	if cw.err != nil {
		return cw.n, cw.err
	}

	return cw.n, cw.w.Flush()
}

type countWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countWriter) Write(b []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}

	n, err := c.w.Write(b)
	c.n += int64(n)
	c.err = err

	return n, err
}
