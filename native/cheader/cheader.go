// Package cheader is a best-effort textual pre-parser for C header
// declarations: function prototypes, enums, and simple #define constants.
// It is not a C compiler. Anything it cannot classify is skipped
// defensively; every parse attempt makes strict forward progress so a
// malformed header cannot hang the reader.
package cheader

import (
	"strconv"
	"strings"

	"nyxlang/value"
)

// Function is one parsed C function prototype.
type Function struct {
	Name       string
	ReturnType value.CType
	ParamTypes []value.CType
	Variadic   bool
}

// EnumConst is one `name = value` member of a parsed enum.
type EnumConst struct {
	Name  string
	Value int64
}

// Macro is a classified #define constant.
type Macro struct {
	Name    string
	IsInt   bool
	IsFloat bool
	Int     int64
	Float   float64
	String  string
}

// Result holds everything a header yielded.
type Result struct {
	Functions []Function
	Enums     []EnumConst
	Macros    []Macro
}

// maxIterations bounds the scan loop so a pathological input cannot spin
// the reader forever; it is far larger than any real header needs.
const maxIterations = 2_000_000

var attributeTokens = []string{
	"__attribute__", "__asm__", "__asm", "__inline__", "__inline",
	"__restrict__", "__restrict", "__THROW", "__extension__", "__nonnull",
	"__wur", "__nothrow__",
}

// Parse scans src and returns every declaration it could classify.
func Parse(src string) Result {
	s := &scanner{src: src}
	var res Result
	iterations := 0
	for !s.atEnd() && iterations < maxIterations {
		iterations++
		start := s.pos
		s.skipSpaceAndComments()
		if s.atEnd() {
			break
		}
		switch {
		case s.consumeLiteral("extern \"C\""):
			s.skipSpaceAndComments()
			s.consumeLiteral("{")
		case s.peekChar() == '#':
			if m, ok := s.parseDefine(); ok {
				res.Macros = append(res.Macros, m)
			}
		case s.consumeWord("typedef"):
			s.skipToSemicolon()
		case s.consumeWord("enum"):
			if consts, ok := s.parseEnum(); ok {
				res.Enums = append(res.Enums, consts...)
			}
		case s.consumeWord("struct") || s.consumeWord("union"):
			s.readIdent() // optional tag name
			s.skipSpaceAndComments()
			if s.peekChar() == '{' {
				s.skipBalanced('{', '}')
			}
			s.skipToSemicolon()
		case s.tryAttribute():
			// already consumed
		default:
			if fn, ok := s.tryParseFunction(); ok {
				res.Functions = append(res.Functions, fn)
			} else {
				s.advanceToken()
			}
		}
		if s.pos == start {
			// Forward-progress guard: nothing matched and nothing was
			// consumed. Force one byte forward so we never spin.
			s.pos++
		}
	}
	return res
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) atEnd() bool { return s.pos >= len(s.src) }

func (s *scanner) peekChar() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipSpaceAndComments() {
	for !s.atEnd() {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.pos++
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for !s.atEnd() && s.src[s.pos] != '\n' {
				s.pos++
			}
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
			s.pos += 2
			for !s.atEnd() && !(s.src[s.pos] == '*' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/') {
				s.pos++
			}
			if !s.atEnd() {
				s.pos += 2
			}
		default:
			return
		}
	}
}

func (s *scanner) consumeLiteral(lit string) bool {
	if strings.HasPrefix(s.src[s.pos:], lit) {
		s.pos += len(lit)
		return true
	}
	return false
}

// consumeWord matches word as a whole identifier (not a prefix of a longer
// identifier) at the current position, skipping leading whitespace first.
func (s *scanner) consumeWord(word string) bool {
	save := s.pos
	s.skipSpaceAndComments()
	if !strings.HasPrefix(s.src[s.pos:], word) {
		s.pos = save
		return false
	}
	end := s.pos + len(word)
	if end < len(s.src) && isIdentByte(s.src[end]) {
		s.pos = save
		return false
	}
	s.pos = end
	return true
}

func (s *scanner) tryAttribute() bool {
	save := s.pos
	s.skipSpaceAndComments()
	for _, tok := range attributeTokens {
		if s.consumeWord(tok) {
			s.skipSpaceAndComments()
			if s.peekChar() == '(' {
				s.skipBalanced('(', ')')
			}
			return true
		}
	}
	s.pos = save
	return false
}

func (s *scanner) skipBalanced(open, close byte) {
	if s.peekChar() != open {
		return
	}
	depth := 0
	for !s.atEnd() {
		c := s.src[s.pos]
		s.pos++
		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (s *scanner) skipToSemicolon() {
	for !s.atEnd() && s.src[s.pos] != ';' {
		s.pos++
	}
	if !s.atEnd() {
		s.pos++
	}
}

func (s *scanner) advanceToken() {
	s.skipSpaceAndComments()
	if s.atEnd() {
		return
	}
	if isIdentByte(s.src[s.pos]) {
		for !s.atEnd() && isIdentByte(s.src[s.pos]) {
			s.pos++
		}
		return
	}
	s.pos++
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (s *scanner) readIdent() string {
	s.skipSpaceAndComments()
	start := s.pos
	for !s.atEnd() && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// parseDefine classifies `#define NAME rest-of-line`. Function-like macros
// (NAME immediately followed by '(') are skipped.
func (s *scanner) parseDefine() (Macro, bool) {
	s.pos++ // '#'
	if !s.consumeWord("define") {
		// Some other directive (#include, #ifdef, ...): skip the line.
		for !s.atEnd() && s.src[s.pos] != '\n' {
			s.pos++
		}
		return Macro{}, false
	}
	name := s.readIdent()
	if name == "" {
		return Macro{}, false
	}
	if s.peekChar() == '(' {
		// function-like macro, not supported
		for !s.atEnd() && s.src[s.pos] != '\n' {
			s.pos++
		}
		return Macro{}, false
	}
	lineStart := s.pos
	for !s.atEnd() && s.src[s.pos] != '\n' {
		s.pos++
	}
	rest := strings.TrimSpace(s.src[lineStart:s.pos])
	if rest == "" {
		return Macro{}, false
	}
	return classifyMacroValue(name, rest)
}

func classifyMacroValue(name, rest string) (Macro, bool) {
	if rest[0] == '"' && strings.HasSuffix(rest, `"`) && len(rest) >= 2 {
		return Macro{Name: name, String: rest[1 : len(rest)-1]}, true
	}
	if iv, err := strconv.ParseInt(rest, 0, 64); err == nil {
		return Macro{Name: name, IsInt: true, Int: iv}, true
	}
	if fv, err := strconv.ParseFloat(rest, 64); err == nil {
		return Macro{Name: name, IsFloat: true, Float: fv}, true
	}
	// Unclassifiable expression-valued macro (e.g. referencing another
	// macro): skip gracefully rather than guessing.
	return Macro{}, false
}

// parseEnum handles `enum [name] { A, B = 3, C };`.
func (s *scanner) parseEnum() ([]EnumConst, bool) {
	s.readIdent() // optional tag name
	s.skipSpaceAndComments()
	if s.peekChar() != '{' {
		s.skipToSemicolon()
		return nil, false
	}
	s.pos++ // '{'
	var consts []EnumConst
	next := int64(0)
	for {
		s.skipSpaceAndComments()
		if s.atEnd() || s.peekChar() == '}' {
			break
		}
		name := s.readIdent()
		if name == "" {
			break
		}
		s.skipSpaceAndComments()
		val := next
		if s.peekChar() == '=' {
			s.pos++
			s.skipSpaceAndComments()
			numStart := s.pos
			for !s.atEnd() && s.src[s.pos] != ',' && s.src[s.pos] != '}' {
				s.pos++
			}
			lit := strings.TrimSpace(s.src[numStart:s.pos])
			if iv, err := strconv.ParseInt(lit, 0, 64); err == nil {
				val = iv
			}
		}
		consts = append(consts, EnumConst{Name: name, Value: val})
		next = val + 1
		s.skipSpaceAndComments()
		if s.peekChar() == ',' {
			s.pos++
			continue
		}
		break
	}
	s.skipSpaceAndComments()
	if s.peekChar() == '}' {
		s.pos++
	}
	s.skipToSemicolon()
	return consts, true
}

// tryParseFunction attempts `ret-type name(params);` starting at the
// current position. It restores the scanner position and reports false if
// the shape doesn't match.
func (s *scanner) tryParseFunction() (Function, bool) {
	save := s.pos
	retTypeStr, ok := s.readTypeSpec()
	if !ok {
		s.pos = save
		return Function{}, false
	}
	name := s.readIdent()
	s.skipSpaceAndComments()
	if name == "" || s.peekChar() != '(' {
		s.pos = save
		return Function{}, false
	}
	s.pos++ // '('
	var params []value.CType
	variadic := false
	s.skipSpaceAndComments()
	for s.peekChar() != ')' {
		s.skipSpaceAndComments()
		if s.consumeLiteral("...") {
			variadic = true
			s.skipSpaceAndComments()
			break
		}
		typeStr, ok := s.readTypeSpec()
		if !ok {
			s.pos = save
			return Function{}, false
		}
		s.readIdent() // optional parameter name, discarded
		params = append(params, classifyType(typeStr))
		s.skipSpaceAndComments()
		if s.peekChar() == ',' {
			s.pos++
			continue
		}
		break
	}
	s.skipSpaceAndComments()
	if s.peekChar() != ')' {
		s.pos = save
		return Function{}, false
	}
	s.pos++
	s.skipSpaceAndComments()
	s.tryAttribute()
	s.skipSpaceAndComments()
	if s.peekChar() != ';' {
		s.pos = save
		return Function{}, false
	}
	s.pos++

	if len(params) == 1 && params[0] == value.CVoid {
		params = nil
	}
	return Function{Name: name, ReturnType: classifyType(retTypeStr), ParamTypes: params, Variadic: variadic}, true
}

// readTypeSpec reads a sequence of type keywords and optional pointer
// stars (`unsigned long long int *`) and returns it normalized with
// trailing stars preserved as literal '*' characters for classifyType.
func (s *scanner) readTypeSpec() (string, bool) {
	var words []string
	for {
		save := s.pos
		s.skipSpaceAndComments()
		if s.tryAttribute() {
			continue
		}
		w := s.readIdent()
		if w == "" {
			s.pos = save
			break
		}
		if len(words) == 0 && (w == "struct" || w == "union" || w == "enum") {
			// `struct Tag` as a parameter or return type: consume the tag
			// and let classifyType decide (pointer -> pointer, value ->
			// the int fallback, same as an unknown typedef).
			tag := s.readIdent()
			if tag == "" {
				s.pos = save
				break
			}
			words = append(words, w, tag)
			break
		}
		if isKeywordStop(w) {
			s.pos = save
			break
		}
		if w == "const" || w == "volatile" {
			// Qualifiers don't affect the underlying type; drop them so
			// "const char *" classifies the same as "char *".
			continue
		}
		if len(words) > 0 && !isTypeKeyword(w) {
			// w doesn't chain onto the type read so far (e.g. the
			// declarator name following "int"): leave it for the caller.
			s.pos = save
			break
		}
		words = append(words, w)
		// A typedef'd type name is just one identifier; base keywords can
		// chain (unsigned long long int).
		if !isTypeKeyword(w) {
			break
		}
	}
	if len(words) == 0 {
		return "", false
	}
	s.skipSpaceAndComments()
	stars := 0
	for s.peekChar() == '*' {
		stars++
		s.pos++
		s.skipSpaceAndComments()
	}
	spec := strings.Join(words, " ")
	for i := 0; i < stars; i++ {
		spec += "*"
	}
	return spec, true
}

func isKeywordStop(w string) bool {
	switch w {
	case "typedef", "struct", "union", "enum", "static", "extern":
		return true
	}
	return false
}

var typeKeywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"bool": true, "_Bool": true,
}

func isTypeKeyword(w string) bool { return typeKeywords[w] }

// classifyType maps a textual type spec to a CType, collapsing anything it
// doesn't recognize to int (per the reader's documented default) except a
// trailing pointer on an otherwise-unknown name, and char* which always
// classifies as string.
func classifyType(spec string) value.CType {
	stars := strings.Count(spec, "*")
	base := strings.TrimRight(spec, "*")
	base = strings.TrimSpace(base)

	if stars > 0 {
		if base == "char" || base == "const char" {
			return value.CString
		}
		return value.CPointer
	}

	switch base {
	case "void":
		return value.CVoid
	case "char":
		return value.CChar
	case "signed char":
		return value.CSChar
	case "unsigned char":
		return value.CUChar
	case "short", "short int", "signed short", "signed short int":
		return value.CShort
	case "unsigned short", "unsigned short int":
		return value.CUShort
	case "int", "signed", "signed int":
		return value.CInt
	case "unsigned", "unsigned int":
		return value.CUInt
	case "long", "long int", "signed long":
		return value.CLong
	case "unsigned long", "unsigned long int":
		return value.CULong
	case "long long", "long long int", "signed long long":
		return value.CLongLong
	case "unsigned long long", "unsigned long long int":
		return value.CULongLong
	case "float":
		return value.CFloat
	case "double", "long double":
		return value.CDouble
	case "bool", "_Bool":
		return value.CBool
	case "size_t":
		return value.CSizeT
	case "int8_t":
		return value.CInt8
	case "int16_t":
		return value.CInt16
	case "int32_t":
		return value.CInt32
	case "int64_t":
		return value.CInt64
	case "uint8_t":
		return value.CUint8
	case "uint16_t":
		return value.CUint16
	case "uint32_t":
		return value.CUint32
	case "uint64_t":
		return value.CUint64
	default:
		// Unknown typedef name: fall back to int.
		return value.CInt
	}
}
