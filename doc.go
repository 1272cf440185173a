/*
Package pgc is a parser-combinator toolbox.

PGC lets a caller build a grammar out of small combinators — literals,
character classes, sequences, choices, repetitions and semantic actions —
and then run that same grammar through one of several interchangeable
parsing backends. Package structure is as follows:

■ arena: pluggable allocation and a bump-style region allocator ("arena").
Each grammar owns one arena, destroyed by Grammar.Free; compile and parse
calls do not allocate from it.

■ grammar: the user-facing combinator graph (the "user IR"). Grammars are
built here and normalized into a context-free grammar by the grammar/cfg
sub-package.

■ grammar/cfg: the normalized sum-of-products grammar, together with its
FIRST/FOLLOW/NULLABLE analyses.

■ backend: the backend registry (a vtable keyed by backend identity) and
the four principal backends: packrat, llk, lalr and glr, plus a regular
backend for the subset of grammars that don't need recursion.

■ sppf: a shared packed parse forest, used by the GLR backend to represent
ambiguous parse results without duplicating shared sub-trees.

■ tree: the parse-tree node types produced by the non-ambiguous backends,
and the semantic-action value representation.

The root package contains the small set of types shared across all other
packages: byte spans, the token abstraction used by the table-driven
backends, and the single structured error type returned by compile and
parse.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package pgc
