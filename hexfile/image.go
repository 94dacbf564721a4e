package hexfile

// Image is a sparse, byte-addressed firmware memory image. Keys are
// non-negative byte addresses exactly as they appear in the HEX file; program
// words occupy two consecutive addresses, low byte first.
type Image map[int]byte

// Set stores the byte value at the given address.
func (img Image) Set(addr int, value byte) {
	img[addr] = value
}

// At returns the byte at addr and whether the image contains it.
func (img Image) At(addr int) (byte, bool) {
	v, ok := img[addr]
	return v, ok
}

// Has reports whether the image contains a byte at addr.
func (img Image) Has(addr int) bool {
	_, ok := img[addr]
	return ok
}

// Len returns the number of bytes held by the image.
func (img Image) Len() int {
	return len(img)
}
