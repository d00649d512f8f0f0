package markup

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds:
//
//	Style
//	  .Selector "Button"
//	  Setter
//	    .Property "Width"
//	    "42"
func sample(t *testing.T) (tree *Tree, style, setter, prop, text NodeID) {
	t.Helper()

	tree = NewTree("sample", nil)

	sel := tree.Add(&Text{Value: "Button"})
	selA := tree.Add(&Assignment{Name: "Selector", Values: []NodeID{sel}})

	name := tree.Add(&Text{Value: "Width"})
	prop = tree.Add(&Assignment{Name: "Property", Values: []NodeID{name}})
	text = tree.Add(&Text{Value: "42"})
	setter = tree.Add(&Object{TypeName: "Setter", Children: []NodeID{prop, text}})

	style = tree.Add(&Object{TypeName: "Style", Children: []NodeID{selA, setter}})
	tree.Root = style

	require.NoError(t, tree.Validate())

	return tree, style, setter, prop, text
}

func TestTree_AddReparentsChildren(t *testing.T) {
	tree, style, setter, prop, text := sample(t)

	assert.Equal(t, None, tree.Parent(style))
	assert.Equal(t, style, tree.Parent(setter))
	assert.Equal(t, setter, tree.Parent(prop))
	assert.Equal(t, setter, tree.Parent(text))
	assert.Equal(t, 7, tree.Len())
}

func TestTree_Children_ReturnsCopy(t *testing.T) {
	tree, _, setter, _, _ := sample(t)

	kids := tree.Children(setter)
	kids[0] = 99

	assert.NotEqual(t, NodeID(99), tree.Children(setter)[0])
}

func TestTree_Ancestors_NearestFirst(t *testing.T) {
	tree, style, setter, prop, _ := sample(t)

	assert.Equal(t, []NodeID{setter, style}, slices.Collect(tree.Ancestors(prop)))
	assert.Empty(t, slices.Collect(tree.Ancestors(style)))
}

func TestTree_Replace(t *testing.T) {
	tree, _, setter, _, text := sample(t)

	repl := tree.Add(&Assignment{Name: "Value"})
	require.NoError(t, tree.Replace(setter, text, repl))

	assert.Equal(t, repl, tree.Children(setter)[1])
	assert.Equal(t, setter, tree.Parent(repl))
	assert.Equal(t, None, tree.Parent(text))

	require.ErrorIs(t, tree.Replace(setter, text, repl), ErrNotChild)
	require.ErrorIs(t, tree.Replace(setter, repl, 1000), ErrInvalidNode)
}

func TestTree_Replace_Root(t *testing.T) {
	tree, style, _, _, _ := sample(t)

	root := tree.Add(&Object{TypeName: "Styles"})
	require.NoError(t, tree.Replace(None, style, root))
	assert.Equal(t, root, tree.Root)

	require.ErrorIs(t, tree.Replace(None, style, root), ErrNotChild)
}

func TestTree_SetValues_DiscardsDropped(t *testing.T) {
	tree, _, _, prop, _ := sample(t)

	old := tree.Children(prop)[0]
	handle := tree.Add(&PropertyHandle{})

	require.NoError(t, tree.SetValues(prop, handle))

	assert.Equal(t, []NodeID{handle}, tree.Children(prop))
	assert.Nil(t, tree.Node(old), "dropped value must be tombstoned")
	assert.Equal(t, prop, tree.Parent(handle))
	require.NoError(t, tree.Validate())

	require.ErrorIs(t, tree.SetValues(handle), ErrInvalidNode)
}

func TestTree_Wrap(t *testing.T) {
	tree, style, setter, _, _ := sample(t)

	scope, err := tree.Wrap(setter, ScopeControlTemplate, TypeRef{Name: "Button"})
	require.NoError(t, err)

	assert.Equal(t, scope, tree.Children(style)[1])
	assert.Equal(t, style, tree.Parent(scope))
	assert.Equal(t, scope, tree.Parent(setter))
	assert.Equal(t, []NodeID{setter}, tree.Children(scope))
	require.NoError(t, tree.Validate())

	rootScope, err := tree.Wrap(style, ScopeStyle, TypeRef{})
	require.NoError(t, err)
	assert.Equal(t, rootScope, tree.Root)
	require.NoError(t, tree.Validate())
}

func TestTree_Scopes_FiltersByTag(t *testing.T) {
	tree, style, setter, prop, _ := sample(t)

	outer, err := tree.Wrap(style, ScopeStyle, TypeRef{Name: "Button"})
	require.NoError(t, err)

	inner, err := tree.Wrap(setter, ScopeControlTemplate, TypeRef{Name: "TextBlock"})
	require.NoError(t, err)

	var got []NodeID
	for id, s := range tree.Scopes(prop, ScopeStyle) {
		got = append(got, id)
		assert.Equal(t, "Button", s.Target.Name)
	}

	assert.Equal(t, []NodeID{outer}, got)

	var all []NodeID
	for id := range AncestorsOf[*TargetTypeScope](tree, prop) {
		all = append(all, id)
	}

	assert.Equal(t, []NodeID{inner, outer}, all)
}

func TestTree_Discard_Recursive(t *testing.T) {
	tree, style, setter, prop, text := sample(t)

	tree.Discard(setter)

	for _, id := range []NodeID{setter, prop, text} {
		assert.Nil(t, tree.Node(id))
	}

	assert.NotContains(t, tree.Children(style), setter)
	assert.Equal(t, 3, tree.Len())
	require.NoError(t, tree.Validate())

	tree.Discard(setter)
	assert.Equal(t, 3, tree.Len())
}

func TestTree_Clone_IsIndependent(t *testing.T) {
	tree, _, setter, _, text := sample(t)

	c := tree.Clone()
	c.Discard(text)
	c.Node(setter).(*Object).TypeName = "Changed"

	assert.NotNil(t, tree.Node(text))
	assert.Equal(t, "Setter", tree.Node(setter).(*Object).TypeName)
	assert.Len(t, tree.Children(setter), 2)
}

func TestTree_Validate_DetectsCorruption(t *testing.T) {
	tree, _, setter, prop, _ := sample(t)

	tree.parent[prop] = None
	require.ErrorIs(t, tree.Validate(), ErrParentMismatch)

	tree.parent[prop] = setter
	obj := tree.Node(setter).(*Object)
	obj.Children = append(obj.Children, prop)
	require.ErrorIs(t, tree.Validate(), ErrSharedNode)
}

func TestTree_Walk_SkipsSubtree(t *testing.T) {
	tree, _, setter, _, _ := sample(t)

	var visited []NodeID

	tree.Walk(func(id NodeID, _ int) bool {
		visited = append(visited, id)

		return id != setter
	})

	assert.Len(t, visited, 4)
	assert.Equal(t, setter, visited[len(visited)-1])
}
