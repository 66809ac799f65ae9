package stubs

// AnyType is the annotation used when a type token cannot be resolved
const AnyType = "typing.Any"

// primitiveTypes maps C/C++ primitive tokens to Python type names.
// void has no Python value type, so it renders as None.
var primitiveTypes = map[string]string{
	"void":    "None",
	"bool":    "bool",
	"char":    "str",
	"wchar_t": "str",
	"short":   "int",
	"int":     "int",
	"long":    "int",
	"__int64": "int",
	"size_t":  "int",
	"ssize_t": "int",
	"float":   "float",
	"double":  "float",
}

// Resolve maps a raw type token to a Python type name. Known classes resolve
// to themselves; anything else degrades to typing.Any.
func Resolve(token string, known map[string]struct{}) string {
	if name, ok := primitiveTypes[token]; ok {
		return name
	}
	if _, ok := known[token]; ok {
		return token
	}
	return AnyType
}
