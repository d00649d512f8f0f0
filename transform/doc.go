// Package transform rewrites parsed markup trees into the resolved form the
// emitter consumes.
//
// A [Pipeline] runs each [Transformer] over the whole tree in pre-order
// before starting the next. The default passes are:
//
//   - [TargetTypeMetadata] scopes styles, control themes, control templates
//     and x:SetterTargetType objects with the element type they apply to.
//   - [PropertyPathResolver] resolves setter PropertyPath text against the
//     enclosing style's target type.
//   - [SetterTransformer] resolves each setter's property, converts its
//     literal value and gives nested templates the setter's target type.
//
// Failures are [*Error] values classified by [ErrorKind]:
//
//	if errors.Is(err, transform.ErrValueConversion) {
//		var te *transform.Error
//		errors.As(err, &te)
//		fmt.Println(te.Pos())
//	}
package transform
