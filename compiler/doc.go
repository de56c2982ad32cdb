/*

Process of compilation

C-- Source Text ->
	parse (front) ->
Abstract Syntax Tree (ast) ->
	analyze (front) ->
Type-annotated AST and symbol Table ->
	translate ->
Three-address Intermediate Representation (ir) ->
	optimize (opt, df) ->
Optimized IR ->
	codegen (back, asm) ->
MIPS32 Assembly Text (SPIM)

Optimized IR ->
	irsim ->
Program output

*/
package compiler
