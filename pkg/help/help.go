// Package help holds the built-in taco language reference.
package help

import (
	"fmt"
	"sort"
	"strings"
)

// Version is the language and tool version shown in help output.
const Version = "v0.1"

// TopicList gives the order topics are listed in.
var TopicList = []string{
	"syntax",
	"types",
	"operators",
	"scoping",
	"diagnostics",
	"repl",
	"examples",
}

// QUICKREF is printed by `taco help` with no topic.
var QUICKREF = `taco ` + Version + ` - a small tree-walking language

USAGE
  taco                      start the REPL
  taco <file>               run a file
  taco run <file|->         run a file (or stdin)
  taco check <file>         parse and check names without running
  taco fmt <file>           print canonical source (--write to rewrite)
  taco tokens <file>        dump the token stream
  taco ast <file>           dump the syntax tree
  taco trace <file.jsonl>   summarize a trace written by run --trace
  taco config [--init]      print the effective configuration, or write
                            a default .taco.yaml
  taco help [topic]         show this text or a topic

TOPICS
  ` + strings.Join(TopicList, ", ") + `

  Topics match by unique prefix: taco help op
`

// Topics maps a topic name to its text.
var Topics = map[string]string{
	"syntax": `SYNTAX

  Statements end with ';'.

    print <expr>;          write the value and a newline
    let <name> = <expr>;   bind a name in the current scope
    let <name>;            bind to nil
    <name> = <expr>;       rebind an existing name
    <expr>;                evaluate (the REPL echoes the value)
    { ... }                run statements in a new scope

  Comments: '#' to end of line, '/* ... */' block comments (not nested).
  Strings: "single line" or ` + "`" + `multi
  line` + "`" + `. There are no escape sequences.

  Reserved words: and class else false function for if nil or print
  return super taco this true let while`,

	"types": `TYPES

  Integer   64-bit signed, wraps on overflow     42
  Float     64-bit IEEE 754                      3.14
  String    UTF-8 text                           "taco"
  Boolean                                        true false
  Nil                                            nil

  Kinds never convert implicitly: 1 + 1.0 is an error.
  Only nil and false are falsy; 0 and "" are truthy.
  Floats print in shortest form, so 2.0 prints as 2.`,

	"operators": `OPERATORS (lowest to highest precedence)

  =              assignment, right-associative
  == !=          same-kind Boolean, Integer, Float or String
  < <= > >=      two Integers or two Floats
  + -            + also concatenates two Strings
  * /            integer division truncates; dividing by zero is an error
  ! -            unary not, unary minus

  Both operands are always evaluated, left first. nil == nil is an error.`,

	"scoping": `SCOPING

  let binds in the current scope, replacing an earlier binding there and
  shadowing outer ones. A block { ... } opens a child scope that is
  discarded when the block ends. Assignment and lookup search outward
  from the current scope; a name found nowhere is an error:

    let a = 1;
    { let a = 2; a = 3; print a; }   # 3
    print a;                         # 1`,

	"diagnostics": `DIAGNOSTICS

  Lexical and syntax errors:
    [line N] Error: <message>
    [line N] Error at end: <message>
    [line N] Error at '<lexeme>': <message>

  Runtime errors:
    [Line N] Error: <message>

  --json prints one JSON object per diagnostic:
    {"code":"E_PARSE","message":"Expect expression.","line":1,"where":"at end"}

  Codes: E_LEX E_PARSE E_UNDEFINED E_TYPE E_DIV_ZERO E_INTERNAL E_IO E_CONFIG

  Exit codes: 0 ok, 1 I/O error, 64 usage, 65 lex/syntax error, 70 runtime error.`,

	"repl": `REPL

  Enter statements at the prompt. Expression statements echo their value.
  When the input is unfinished (a missing ';', an open block, string or
  comment) the continuation prompt asks for more; an empty line submits.

    :help     show this reference
    :env      list global bindings
    :check    check statements against the current bindings
    :reset    drop all global bindings
    :quit     leave (Ctrl-D also works)

  Errors are reported and the session continues. History is kept in the
  history_file set in .taco.yaml or ~/.taco/config.yaml.`,

	"examples": `EXAMPLES

  print 1 + 2 * 3;              # 7
  print (1 + 2) * 3;            # 9
  let name = "taco";
  print "hello " + name;        # hello taco
  print 7 / 2;                  # 3
  print 7.0 / 2.0;              # 3.5
  print !nil;                   # true
  let n = 1;
  { let n = n + 1; print n; }   # 2
  print n;                      # 1`,
}

// MatchTopic resolves a topic name exactly or by unique prefix.
func MatchTopic(name string) (string, string, error) {
	if content, ok := Topics[name]; ok {
		return name, content, nil
	}

	var candidates []string
	for topic := range Topics {
		if name != "" && strings.HasPrefix(topic, name) {
			candidates = append(candidates, topic)
		}
	}
	sort.Strings(candidates)

	switch len(candidates) {
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q; topics: %s", name, strings.Join(TopicList, ", "))
	case 1:
		return candidates[0], Topics[candidates[0]], nil
	}
	return "", "", fmt.Errorf("ambiguous help topic %q: matches %s", name, strings.Join(candidates, ", "))
}
