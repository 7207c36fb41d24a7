// Package stdlib holds the standard prelude shipped with mexp.
package stdlib

import _ "embed"

// Prelude defines a small set of one-argument formatting macros. Expanding
// it produces no output.
//
//go:embed prelude.tex
var Prelude string
