package transform

import (
	"context"

	"github.com/ardnew/stylec/coerce"
	"github.com/ardnew/stylec/log"
	"github.com/ardnew/stylec/markup"
	"github.com/ardnew/stylec/typesys"
)

// PropertyLookup resolves a property name on an owning type.
type PropertyLookup interface {
	LookupProperty(owner *typesys.Type, name string) (*typesys.Property, error)
}

// Context is the state shared by every node visited during one pass.
type Context struct {
	context.Context

	Tree       *markup.Tree
	Types      *typesys.Table
	WellKnown  typesys.WellKnown
	Properties PropertyLookup
	Coercer    coerce.Coercer
	Logger     log.Logger
}

// Object returns the node id as an object, or nil.
func (c *Context) Object(id markup.NodeID) *markup.Object {
	obj, _ := c.Tree.Node(id).(*markup.Object)

	return obj
}

// Assignment returns the first assignment child of id naming property name.
func (c *Context) Assignment(id markup.NodeID, name string) (markup.NodeID, *markup.Assignment) {
	for _, child := range c.Tree.Children(id) {
		if a, ok := c.Tree.Node(child).(*markup.Assignment); ok && a.PropertyName() == name {
			return child, a
		}
	}

	return markup.None, nil
}

// Text returns the node id as text, or nil.
func (c *Context) Text(id markup.NodeID) *markup.Text {
	t, _ := c.Tree.Node(id).(*markup.Text)

	return t
}
