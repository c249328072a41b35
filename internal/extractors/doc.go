// Package extractors converts raw project documents into plain text.
//
// Each subpackage handles one file format (pdf, docx, xlsx, plaintext);
// the registry in this package dispatches by file extension. Extracted
// text is prefixed with a two-line "File:"/"Location:" provenance header
// so generated answers can cite where evidence came from.
package extractors
