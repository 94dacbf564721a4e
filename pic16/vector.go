// Package pic16 implements the reset-vector surgery needed before handing a
// firmware image to a TinyBld-style resident bootloader on the 16F family.
//
// The bootloader lives at the top of flash and regains control after every
// reset, so the application's power-on vector (the first words of program
// memory) is moved out of the way and replaced with a jump into the
// bootloader. The handful of opcodes decoded here is just enough to tell
// whether the original vector contains a GOTO and whether it initialises
// PCLATH before jumping; this package is 16F-specific by construction.
package pic16

import "picloader/hexfile"

// Instruction patterns of the 14-bit 16F core, as they appear after
// little-endian assembly into a 16-bit word.
const (
	gotoMask  = 0x3800 // any unconditional GOTO matches gotoValue under this mask
	gotoValue = 0x2800

	opClrfPCLATH  = 0x018A // CLRF PCLATH
	opMovwfPCLATH = 0x008A // MOVWF PCLATH
	opBcfPCLATH3  = 0x118A // BCF PCLATH,3
	opBcfPCLATH4  = 0x120A // BCF PCLATH,4
)

// jumpStub is the literal 3-instruction sequence installed at address 0:
//
//	movlw 0x1f      ; page bits for the bootloader area
//	movwf PCLATH
//	goto  0x7a0     ; bootloader entry word address
//
// It is injected as bytes, not assembled.
var jumpStub = [6]byte{0x1F, 0x30, 0x8A, 0x00, 0xA0, 0x2F}

// Vector is a compact 0-based copy of the words captured from the original
// reset vector. Keys run 0,2,4 in the order the pairs were found.
type Vector map[int]byte

// Analysis is the result of scanning an original reset vector.
type Analysis struct {
	// GotoFound reports whether any captured word is an unconditional jump.
	GotoFound bool

	// PCLATHNeedsInit reports whether the captured code does not fully
	// initialise PCLATH before jumping, so the relocated copy must be
	// prefixed with a CLRF PCLATH.
	PCLATHNeedsInit bool
}

// Logger receives the advisory warnings produced during relocation.
// A *logrus.Logger satisfies it; nil disables logging.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// ExtractVector copies the original power-on vector out of the image. The
// byte pairs {0,1}, {2,3} and {4,5} are candidates; a pair is captured only
// when both bytes are present, and captured pairs are repacked from offset 0.
func ExtractVector(img hexfile.Image) Vector {
	vec := make(Vector)
	k := 0
	for i := 0; i < 6; i += 2 {
		lo, okLo := img.At(i)
		hi, okHi := img.At(i + 1)
		if okLo && okHi {
			vec[k] = lo
			vec[k+1] = hi
			k += 2
		}
	}
	return vec
}

// InstallJumpStub unconditionally overwrites addresses 0-5 of the image with
// the jump into the bootloader.
func InstallJumpStub(img hexfile.Image) {
	for i, b := range jumpStub {
		img.Set(i, b)
	}
}

// Analyze decodes each captured word and reports whether a GOTO is present
// and whether PCLATH still needs initialisation.
//
// PCLATH scoring follows the reference tool: CLRF PCLATH or MOVWF PCLATH
// fully initialise it (score 2); BCF PCLATH,3 and BCF PCLATH,4 each count
// for one. Anything other than exactly 2 means the relocated vector gets a
// CLRF PCLATH prefix.
func Analyze(vec Vector) Analysis {
	var a Analysis
	pclath := 0
	for i := 0; i < 6; i += 2 {
		lo, ok := vec[i]
		if !ok {
			continue
		}
		word := int(vec[i+1])<<8 | int(lo)
		switch {
		case word&gotoMask == gotoValue:
			a.GotoFound = true
		case word == opClrfPCLATH, word == opMovwfPCLATH:
			pclath = 2
		case word == opBcfPCLATH3, word == opBcfPCLATH4:
			pclath++
		}
	}
	a.PCLATHNeedsInit = pclath != 2
	return a
}

// Relocate writes the captured vector back into the image at the address the
// bootloader executes it from: 200 bytes below the top of flash. When the
// analysis says PCLATH is not initialised, a CLRF PCLATH instruction is
// prepended. The advisory warnings are non-fatal; relocation proceeds
// regardless.
func Relocate(img hexfile.Image, vec Vector, a Analysis, maxFlashWordAddr int, log Logger) {
	if !a.GotoFound {
		warnf(log, "GOTO not found in first words, check reset vector initialization in your program")
	}
	if len(vec) == 0 || len(vec) > 6 {
		warnf(log, "invalid reset vector, check reset vector initialization in your program")
	}

	base := 2*maxFlashWordAddr - 200

	if a.PCLATHNeedsInit {
		warnf(log, "PCLATH not fully initialised before goto")
		img.Set(base, 0x8A) // clrf PCLATH
		img.Set(base+1, 0x01)
		base += 2
	}

	for i := 0; i < 6; i += 2 {
		if lo, ok := vec[i]; ok {
			img.Set(base+i, lo)
			img.Set(base+i+1, vec[i+1])
		}
	}
}

// MoveResetVector performs the full relocation: capture the original vector,
// install the bootloader jump stub at address 0, and append the captured
// vector (plus PCLATH initialisation if needed) below the top of flash.
// Pure image transform; no I/O.
func MoveResetVector(img hexfile.Image, maxFlashWordAddr int, log Logger) {
	vec := ExtractVector(img)
	InstallJumpStub(img)
	a := Analyze(vec)
	Relocate(img, vec, a, maxFlashWordAddr, log)
	infof(log, "reset vector moved successfully")
}

func infof(log Logger, format string, args ...interface{}) {
	if log != nil {
		log.Infof(format, args...)
	}
}

func warnf(log Logger, format string, args ...interface{}) {
	if log != nil {
		log.Warnf(format, args...)
	}
}
