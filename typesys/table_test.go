package typesys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_WellKnownResolves(t *testing.T) {
	tbl := Default()

	wk, err := tbl.WellKnown()
	require.NoError(t, err)

	assert.Equal(t, SetterName, wk.Setter.Name)
	assert.True(t, wk.Binding.IsInterface())
	assert.True(t, wk.TemplateOfElement.IsAssignableFrom(tbl.Type("ControlTemplate")))
	assert.True(t, wk.StyleBase.IsAssignableFrom(wk.Style))
	assert.False(t, wk.TemplateOfElement.IsAssignableFrom(wk.Style))
}

func TestTable_WellKnown_ReportsMissing(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.Load(strings.NewReader("types:\n  - name: Object\n  - name: Setter\n")))

	_, err := tbl.WellKnown()
	require.ErrorIs(t, err, ErrWellKnownMissing)
	assert.Contains(t, err.(*Error).LogValue().String(), "IBinding")
}

func TestType_IsAssignableFrom(t *testing.T) {
	tbl := Default()

	tests := []struct {
		name     string
		to, from string
		want     bool
	}{
		{"identity", "Button", "Button", true},
		{"base chain", "Control", "Button", true},
		{"object root", "Object", "Double", true},
		{"interface", "IBinding", "Binding", true},
		{"derived from base", "Button", "Control", false},
		{"unrelated", "Double", "String", false},
		{"interface to object", "Object", "IBinding", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			to, from := tbl.Type(tt.to), tbl.Type(tt.from)
			require.NotNil(t, to)
			require.NotNil(t, from)
			assert.Equal(t, tt.want, to.IsAssignableFrom(from))
		})
	}

	var nilType *Type
	assert.False(t, nilType.IsAssignableFrom(tbl.Type("Object")))
	assert.False(t, tbl.Type("Object").IsAssignableFrom(nil))
}

func TestType_AcceptsNull(t *testing.T) {
	tbl := Default()

	assert.False(t, tbl.Type("Double").AcceptsNull())
	assert.True(t, tbl.Type("NullableDouble").AcceptsNull())
	assert.True(t, tbl.Type("String").AcceptsNull())
	assert.True(t, tbl.Type("IBrush").AcceptsNull())
}

func TestTable_LookupProperty(t *testing.T) {
	tbl := Default()
	button := tbl.Type("Button")

	tests := []struct {
		name      string
		owner     *Type
		prop      string
		declaring string
		attached  bool
		wantErr   error
	}{
		{name: "own", owner: button, prop: "ClickMode", declaring: "Button"},
		{name: "inherited", owner: button, prop: "Width", declaring: "Control"},
		{name: "attached", owner: button, prop: "Grid.Row", declaring: "Grid", attached: true},
		{name: "attached parenthesized", owner: button, prop: "(Grid.Column)", declaring: "Grid", attached: true},
		{name: "missing", owner: button, prop: "Nope", wantErr: ErrPropertyNotFound},
		{name: "unknown owner", owner: button, prop: "Nope.Row", wantErr: ErrTypeNotFound},
		{name: "nil owner", owner: nil, prop: "Width", wantErr: ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tbl.LookupProperty(tt.owner, tt.prop)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.declaring, p.DeclaringType.Name)
			assert.Equal(t, tt.attached, p.Attached)
		})
	}
}

func TestTable_LookupProperty_Accessors(t *testing.T) {
	tbl := Default()

	width, err := tbl.LookupProperty(tbl.Type("Control"), "Width")
	require.NoError(t, err)
	assert.Equal(t, Accessor{Owner: "Control", Name: "get_Width"}, width.Getter)
	require.Len(t, width.Setters, 1)
	assert.Equal(t, Accessor{Owner: "Control", Name: "set_Width"}, width.Setters[0].Accessor)
	assert.True(t, width.Setters[0].Box())
	assert.False(t, width.Setters[0].AllowNull)

	row, err := tbl.LookupProperty(nil, "Grid.Row")
	require.NoError(t, err)
	assert.Equal(t, "SetRow", row.Setters[0].Accessor.Name)
	assert.Equal(t, "(Grid.Row)", row.String())

	classes, err := tbl.LookupProperty(tbl.Type("Control"), "Classes")
	require.NoError(t, err)
	assert.Empty(t, classes.Setters)
}

func TestTable_Suggest(t *testing.T) {
	tbl := Default()

	got := tbl.Suggest(tbl.Type("Button"), "bkgnd")
	require.NotEmpty(t, got)
	assert.Equal(t, "Background", got[0])
	assert.LessOrEqual(t, len(got), 3)

	assert.Empty(t, tbl.Suggest(tbl.Type("Button"), "zzzz"))
}

func TestTable_Suggest_Transposed(t *testing.T) {
	tbl := Default()
	button := tbl.Type("Button")

	tests := []struct {
		name string
		want string
	}{
		{name: "Widht", want: "Width"},
		{name: "Heigth", want: "Height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tbl.Suggest(button, tt.name), tt.want)
		})
	}
}

func TestTable_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "duplicate in document",
			doc:     "types:\n  - name: A\n  - name: A\n",
			wantErr: ErrDuplicateType,
		},
		{
			name:    "duplicate of existing",
			doc:     "types:\n  - name: Button\n",
			wantErr: ErrDuplicateType,
		},
		{
			name:    "unknown base",
			doc:     "types:\n  - name: A\n    base: Missing\n",
			wantErr: ErrTypeNotFound,
		},
		{
			name:    "unknown property type",
			doc:     "types:\n  - name: A\n    properties:\n      - { name: P, type: Missing }\n",
			wantErr: ErrTypeNotFound,
		},
		{
			name:    "duplicate property",
			doc:     "types:\n  - name: A\n    properties:\n      - { name: P, type: String }\n      - { name: P, type: String }\n",
			wantErr: ErrDuplicateProperty,
		},
		{
			name:    "bad kind",
			doc:     "types:\n  - name: A\n    kind: union\n",
			wantErr: ErrInvalidKind,
		},
		{
			name:    "unknown field",
			doc:     "types:\n  - name: A\n    colour: red\n",
			wantErr: ErrDecodeTable,
		},
		{
			name:    "cycle",
			doc:     "types:\n  - name: A\n    base: B\n  - name: B\n    base: A\n",
			wantErr: ErrInheritanceCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := Builtin()
			before := len(tbl.Names())

			err := tbl.Load(strings.NewReader(tt.doc))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, tbl.Names(), before, "failed load must not add types")
		})
	}
}

func TestTable_Load_ExtendsExisting(t *testing.T) {
	tbl := Builtin()

	doc := `
types:
  - name: ToggleSwitch
    base: CheckBox
    properties:
      - { name: OnContent, type: Object }
      - { name: KnobBrush, type: Brushy }
  - name: Brushy
    implements: [IBrush]
`
	require.NoError(t, tbl.Load(strings.NewReader(doc)))

	toggle := tbl.Type("ToggleSwitch")
	require.NotNil(t, toggle)
	assert.True(t, tbl.Type("ContentControl").IsAssignableFrom(toggle))

	p, err := tbl.LookupProperty(toggle, "KnobBrush")
	require.NoError(t, err)
	assert.True(t, tbl.Type("IBrush").IsAssignableFrom(p.Type))

	names := tbl.Names()
	assert.Equal(t, "Brushy", names[len(names)-1])
}

func TestTable_Load_EmptyDocument(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.Load(strings.NewReader("")))
	assert.Empty(t, tbl.Names())
}

func TestDefault_SharedAndSealed(t *testing.T) {
	tbl := Default()
	require.Same(t, tbl, Default())
	assert.True(t, tbl.Sealed())

	before := len(tbl.Names())
	err := tbl.Load(strings.NewReader("types:\n  - name: Gauge\n    base: Control\n"))
	require.ErrorIs(t, err, ErrSealedTable)
	assert.Len(t, tbl.Names(), before)

	fresh := Builtin()
	assert.NotSame(t, tbl, fresh)
	assert.False(t, fresh.Sealed())
	assert.NotSame(t, tbl.Type("Setter"), fresh.Type("Setter"))
	require.NoError(t, fresh.Load(strings.NewReader("types:\n  - name: Gauge\n    base: Control\n")))
	assert.Nil(t, tbl.Type("Gauge"))
}
