// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// from files with specific extensions.
//
// Normalisers are registered with the Registry, which implements
// driven.TextExtractor for the upload path.
package normalisers
