package typesys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetter_Applicable(t *testing.T) {
	tbl := Default()
	double, str, binding := tbl.Type("Double"), tbl.Type("String"), tbl.Type("Binding")

	direct := Setter{Kind: DirectAssignment, Accepts: double}
	bind := Setter{Kind: DeferredBinding, Accepts: tbl.Type("IBinding")}
	text := Setter{Kind: DirectAssignment, Accepts: str, AllowNull: true}

	assert.True(t, direct.Applicable(double, false))
	assert.False(t, direct.Applicable(str, false))
	assert.False(t, direct.Applicable(nil, true))
	assert.True(t, bind.Applicable(binding, false))
	assert.False(t, bind.Applicable(double, false))
	assert.True(t, text.Applicable(nil, true))
}

func TestSetter_EqualAndKey(t *testing.T) {
	tbl := Default()
	acc := Accessor{Owner: "Setter", Name: "set_Value"}

	a := Setter{Kind: DirectAssignment, Accessor: acc, Accepts: tbl.Type("Double")}
	b := Setter{Kind: DirectAssignment, Accessor: acc, Accepts: tbl.Type("Double"), AllowNull: true}
	c := Setter{Kind: DirectAssignment, Accessor: acc, Accepts: tbl.Type("Int32")}
	d := Setter{Kind: DirectAssignment, Accessor: Accessor{Owner: "Control", Name: "set_Width"}, Accepts: tbl.Type("Double")}

	assert.True(t, a.Equal(b), "nullability is not part of identity")
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))

	seen := map[SetterKey]bool{a.Key(): true}
	assert.True(t, seen[b.Key()])
	assert.False(t, seen[c.Key()])
}

func TestSetter_Box(t *testing.T) {
	tbl := Default()

	assert.True(t, Setter{Accepts: tbl.Type("Thickness")}.Box())
	assert.False(t, Setter{Accepts: tbl.Type("IBinding")}.Box())
	assert.False(t, Setter{Accepts: tbl.Type("UnsetValueType")}.Box())
	assert.False(t, Setter{}.Box())
}

func TestSetter_String(t *testing.T) {
	tbl := Default()

	s := Setter{
		Kind:      DirectAssignment,
		Accessor:  Accessor{Owner: "Setter", Name: "set_Value"},
		Accepts:   tbl.Type("String"),
		AllowNull: true,
	}

	assert.Equal(t, "direct Setter::set_Value(String?)", s.String())
	assert.Equal(t, "binding", DeferredBinding.String())
	assert.Equal(t, "unset", UnsetSentinel.String())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"":          KindReference,
		"Value":     KindValue,
		"struct":    KindValue,
		"interface": KindInterface,
	} {
		got, err := ParseKind(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got, "ParseKind(%q)", in)
	}
}
