// Package hexfile loads PIC firmware from Intel-HEX text files into a sparse
// byte-addressed memory image.
//
// The loader intentionally mirrors the behavior of the reference tool: it
// stops scanning at the first record that does not carry program data
// (configuration words, EEPROM data, or any other nonzero record type) and it
// does not verify record checksums. Changing either would silently change
// which bytes end up in flash.
package hexfile
