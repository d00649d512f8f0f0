package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/stylec/markup"
)

func TestSelectorElement(t *testing.T) {
	tests := map[string]string{
		"Button":                           "Button",
		"Button.primary:pointerover":       "Button",
		"StackPanel > Button":              "Button",
		"Border TextBlock#title":           "TextBlock",
		"Button /template/ ContentPresenter#PART_ContentPresenter": "ContentPresenter",
		":is(Control).accent":              "Control",
		"local|MyButton":                   "MyButton",
		".primary":                         "",
		"^:pointerover":                    "^",
		"^ /template/ Border":              "Border",
		"":                                 "",
	}

	for sel, want := range tests {
		assert.Equal(t, want, selectorElement(sel), sel)
	}
}

func TestSplitTop(t *testing.T) {
	comma := func(r rune) bool { return r == ',' }

	assert.Equal(t, []string{"Button", ":is(A, B)"}, splitTop("Button, :is(A, B)", comma))
	assert.Empty(t, splitTop(" , ", comma))
}

func scopeOf(t *testing.T, tree *markup.Tree, id markup.NodeID) *markup.TargetTypeScope {
	t.Helper()

	s, ok := tree.Node(tree.Parent(id)).(*markup.TargetTypeScope)
	require.True(t, ok, "node %d is not scoped", id)
	require.Equal(t, id, s.Value)

	return s
}

func TestTargetTypeMetadata(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		scope  markup.ScopeTag
		target string
	}{
		{
			name: "style selector",
			doc: `type: Style
props:
  Selector: StackPanel > Button:pressed
`,
			scope:  markup.ScopeStyle,
			target: "Button",
		},
		{
			name: "selector alternatives share a base",
			doc: `type: Style
props:
  Selector: Button, CheckBox
`,
			scope:  markup.ScopeStyle,
			target: "ContentControl",
		},
		{
			name: "control theme",
			doc: `type: ControlTheme
props:
  TargetType: "{x:Type Border}"
`,
			scope:  markup.ScopeStyle,
			target: "Border",
		},
		{
			name: "control template",
			doc: `type: ControlTemplate
props:
  TargetType: Button
`,
			scope:  markup.ScopeControlTemplate,
			target: "Button",
		},
		{
			name: "directive",
			doc: `type: StackPanel
props:
  x:SetterTargetType: TextBlock
`,
			scope:  markup.ScopeStyle,
			target: "TextBlock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.doc)
			root := tree.Root

			require.NoError(t, run(t, tree, WithTransformers(TargetTypeMetadata{})))
			require.NoError(t, tree.Validate())

			s := scopeOf(t, tree, root)
			assert.Equal(t, tree.Root, tree.Parent(root))
			assert.Equal(t, tt.scope, s.Scope)
			require.NotNil(t, s.Target.Type)
			assert.Equal(t, tt.target, s.Target.Type.Name)

			n := tree.Len()
			require.NoError(t, run(t, tree, WithTransformers(TargetTypeMetadata{})))
			assert.Equal(t, n, tree.Len(), "already scoped objects are skipped")
		})
	}
}

func TestTargetTypeMetadata_NestedStyleInheritsTarget(t *testing.T) {
	tree := parse(t, `type: Style
props:
  Selector: Button
children:
  - type: Style
    props:
      Selector: ^:pointerover
    children:
      - type: Setter
        props:
          Property: Opacity
          Value: 0.5
`)

	require.NoError(t, run(t, tree))

	id, _ := setterOf(t, tree, 0)

	var targets []string
	for _, s := range tree.Scopes(id, markup.ScopeStyle) {
		targets = append(targets, s.Target.String())
	}

	assert.Equal(t, []string{"Button", "Button"}, targets)
}

func TestTargetTypeMetadata_TemplateWithoutTargetType(t *testing.T) {
	tree := parse(t, `type: ControlTemplate
`)
	root := tree.Root

	require.NoError(t, run(t, tree, WithTransformers(TargetTypeMetadata{})))
	assert.Equal(t, root, tree.Root)
}
