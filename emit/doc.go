// Package emit lowers a transformed markup tree to a typed instruction
// listing.
//
// Objects are constructed with newobj and populated with a call through the
// first setter overload of each property that accepts the value. Literals
// are converted for that overload and loaded with ldc; value types are
// boxed first. Literals left on a setter for runtime binding become defer
// instructions. Overloads that share an accessor and accepted type are
// listed once in the program's accessor table:
//
//	.program button.yaml
//	.accessors 2
//	  #0   direct Style::set_Selector(String?)
//	  #1   direct Setter::set_Property(AvaloniaProperty?)
//	.code 5
//	  scope style Button
//	    newobj Style
//	      ldc "Button" : String
//	      call #0 Style::set_Selector
//	  ...
package emit
