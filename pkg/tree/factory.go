package tree

// Factory resolves component class names. Restoring a snapshot consults it to
// decide whether a class is known; unknown classes become placeholders.
type Factory interface {
	Lookup(class string) (Kind, bool)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(class string) (Kind, bool)

func (f FactoryFunc) Lookup(class string) (Kind, bool) { return f(class) }
