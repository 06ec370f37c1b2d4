// Package normalisers turns course files into course documents. The
// subpackages handle one format each and share the coursedoc header parser;
// Registry picks one by MIME type and priority.
package normalisers
