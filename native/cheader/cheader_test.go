package cheader

import (
	"strings"
	"testing"
	"time"

	"nyxlang/value"
)

func findFn(r Result, name string) (Function, bool) {
	for _, f := range r.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}

func TestSimplePrototype(t *testing.T) {
	r := Parse("int add(int a, int b);")
	fn, ok := findFn(r, "add")
	if !ok {
		t.Fatal("add not found")
	}
	if fn.ReturnType != value.CInt {
		t.Errorf("ReturnType = %v, want CInt", fn.ReturnType)
	}
	if len(fn.ParamTypes) != 2 || fn.ParamTypes[0] != value.CInt || fn.ParamTypes[1] != value.CInt {
		t.Errorf("ParamTypes = %v, want [CInt CInt]", fn.ParamTypes)
	}
}

func TestVoidParamListCollapsesToNoParams(t *testing.T) {
	r := Parse("int getpid(void);")
	fn, ok := findFn(r, "getpid")
	if !ok {
		t.Fatal("getpid not found")
	}
	if len(fn.ParamTypes) != 0 {
		t.Errorf("ParamTypes = %v, want empty", fn.ParamTypes)
	}
}

func TestPointerAndCharStarClassification(t *testing.T) {
	r := Parse("char *strdup(const char *s);\nvoid *malloc(size_t n);")
	dup, ok := findFn(r, "strdup")
	if !ok {
		t.Fatal("strdup not found")
	}
	if dup.ReturnType != value.CString {
		t.Errorf("strdup ReturnType = %v, want CString", dup.ReturnType)
	}
	if len(dup.ParamTypes) != 1 || dup.ParamTypes[0] != value.CString {
		t.Errorf("strdup ParamTypes = %v, want [CString]", dup.ParamTypes)
	}

	m, ok := findFn(r, "malloc")
	if !ok {
		t.Fatal("malloc not found")
	}
	if m.ReturnType != value.CPointer {
		t.Errorf("malloc ReturnType = %v, want CPointer", m.ReturnType)
	}
}

func TestVariadicFunction(t *testing.T) {
	r := Parse("int printf(const char *fmt, ...);")
	fn, ok := findFn(r, "printf")
	if !ok {
		t.Fatal("printf not found")
	}
	if !fn.Variadic {
		t.Error("Variadic = false, want true")
	}
	if len(fn.ParamTypes) != 1 {
		t.Errorf("ParamTypes = %v, want a single leading CString", fn.ParamTypes)
	}
}

func TestUnsignedLongLongChain(t *testing.T) {
	r := Parse("unsigned long long int pack(unsigned long long int n);")
	fn, ok := findFn(r, "pack")
	if !ok {
		t.Fatal("pack not found")
	}
	if fn.ReturnType != value.CULongLong {
		t.Errorf("ReturnType = %v, want CULongLong", fn.ReturnType)
	}
}

func TestFixedWidthIntTypes(t *testing.T) {
	r := Parse("int32_t clamp32(int64_t v, uint8_t lo);")
	fn, ok := findFn(r, "clamp32")
	if !ok {
		t.Fatal("clamp32 not found")
	}
	if fn.ReturnType != value.CInt32 {
		t.Errorf("ReturnType = %v, want CInt32", fn.ReturnType)
	}
	if fn.ParamTypes[0] != value.CInt64 || fn.ParamTypes[1] != value.CUint8 {
		t.Errorf("ParamTypes = %v, want [CInt64 CUint8]", fn.ParamTypes)
	}
}

func TestUnknownTypedefDefaultsToInt(t *testing.T) {
	r := Parse("widget_t spin(widget_t w);")
	fn, ok := findFn(r, "spin")
	if !ok {
		t.Fatal("spin not found")
	}
	if fn.ReturnType != value.CInt {
		t.Errorf("ReturnType = %v, want CInt (unknown typedef default)", fn.ReturnType)
	}
}

func TestEnumWithExplicitAndImpliedValues(t *testing.T) {
	r := Parse("enum Color { RED, GREEN = 5, BLUE };")
	want := map[string]int64{"RED": 0, "GREEN": 5, "BLUE": 6}
	if len(r.Enums) != 3 {
		t.Fatalf("Enums = %+v, want 3 entries", r.Enums)
	}
	for _, e := range r.Enums {
		if w, ok := want[e.Name]; !ok || w != e.Value {
			t.Errorf("enum %s = %d, want %d", e.Name, e.Value, want[e.Name])
		}
	}
}

func TestDefineIntFloatAndString(t *testing.T) {
	r := Parse("#define MAX 100\n#define PI 3.5\n#define NAME \"nyx\"\n")
	byName := map[string]Macro{}
	for _, m := range r.Macros {
		byName[m.Name] = m
	}
	if m := byName["MAX"]; !m.IsInt || m.Int != 100 {
		t.Errorf("MAX = %+v, want IsInt Int=100", m)
	}
	if m := byName["PI"]; !m.IsFloat || m.Float != 3.5 {
		t.Errorf("PI = %+v, want IsFloat Float=3.5", m)
	}
	if m := byName["NAME"]; m.String != "nyx" {
		t.Errorf("NAME = %+v, want String=nyx", m)
	}
}

func TestFunctionLikeMacroIsSkipped(t *testing.T) {
	r := Parse("#define SQUARE(x) ((x) * (x))\n#define OK 1\n")
	if len(r.Macros) != 1 || r.Macros[0].Name != "OK" {
		t.Errorf("Macros = %+v, want only OK (function-like macro skipped)", r.Macros)
	}
}

func TestAttributeBeforeSemicolonIsSkipped(t *testing.T) {
	r := Parse(`int fast(int x) __attribute__((const));`)
	fn, ok := findFn(r, "fast")
	if !ok {
		t.Fatal("fast not found despite trailing __attribute__")
	}
	if fn.ReturnType != value.CInt {
		t.Errorf("ReturnType = %v, want CInt", fn.ReturnType)
	}
}

func TestCommentsAreIgnored(t *testing.T) {
	r := Parse("/* returns the sum */\nint add(int a, int b); // trailing\n")
	if _, ok := findFn(r, "add"); !ok {
		t.Error("add not found; comments should be skipped, not break parsing")
	}
}

func TestTypedefAndStructDeclarationsAreSkippedNotParsedAsFunctions(t *testing.T) {
	r := Parse(`
typedef struct Point { int x; int y; } Point;
struct Rect { int w; int h; };
int area(struct Rect r);
`)
	if len(r.Functions) != 1 || r.Functions[0].Name != "area" {
		t.Errorf("Functions = %+v, want only area", r.Functions)
	}
}

func TestMalformedHeaderMakesForwardProgress(t *testing.T) {
	// A garbage header with no valid declarations must still terminate:
	// every branch in Parse's loop either consumes input or the forward
	// progress guard forces the cursor forward by one byte.
	garbage := strings.Repeat("@#$%^&*(", 5000)
	done := make(chan Result, 1)
	go func() { done <- Parse(garbage) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Parse did not terminate on malformed input")
	}
}

func TestMultipleFunctionsInOneHeader(t *testing.T) {
	r := Parse(`
double sqrt(double x);
double pow(double base, double exp);
void free(void *ptr);
`)
	if len(r.Functions) != 3 {
		t.Fatalf("Functions = %+v, want 3", r.Functions)
	}
	sqrtFn, ok := findFn(r, "sqrt")
	if !ok || sqrtFn.ReturnType != value.CDouble {
		t.Errorf("sqrt = %+v", sqrtFn)
	}
}
