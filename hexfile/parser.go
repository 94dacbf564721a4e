package hexfile

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// The bootloader only ever flashes program memory. These two extended-address
// records mark the start of configuration-word and EEPROM data in the files
// produced by the usual PIC toolchains; matching is on the literal leading
// characters, exactly as the reference tool did it.
const (
	configMarker = ":020000040030CA"
	eepromMarker = ":0200000400F00A"
)

// Logger receives advisory messages emitted while scanning a firmware file.
// A *logrus.Logger satisfies it; nil disables logging.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

type parser struct {
	log Logger
}

// Option configures the loader.
type Option func(*parser)

// WithLogger sets the sink for advisory parse messages.
func WithLogger(log Logger) Option {
	return func(p *parser) {
		p.log = log
	}
}

// Load reads an Intel-HEX firmware file into a sparse memory image.
//
// It fails with *ReadError when the file cannot be opened or contains no
// data bytes, and with *FormatError on a malformed record line.
func Load(path string, opts ...Option) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	img, err := ParseReader(f, opts...)
	if err != nil {
		if _, ok := err.(*FormatError); ok {
			return nil, err
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	if img.Len() == 0 {
		return nil, &ReadError{Path: path}
	}
	return img, nil
}

// ParseReader parses HEX records from r into an Image.
//
// The scan stops, without error, at the first record that does not carry
// program data: the configuration-word marker, the EEPROM marker, or any
// record whose type field is nonzero. Records after that point are ignored
// even if they would have been valid data records. Record checksums are not
// verified.
func ParseReader(r io.Reader, opts ...Option) (Image, error) {
	p := &parser{}
	for _, opt := range opts {
		opt(p)
	}

	img := make(Image)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n \t")
		if line == "" {
			continue
		}

		stop, err := p.parseRecord(img, line, lineNum)
		if err != nil {
			return nil, err
		}
		if stop {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return img, nil
}

// parseRecord decodes one record line into img. It returns stop=true when the
// record terminates the scan.
func (p *parser) parseRecord(img Image, line string, lineNum int) (bool, error) {
	if line[0] != ':' && line[0] != ';' {
		return false, &FormatError{Line: lineNum, Reason: "record must start with ':' or ';'"}
	}

	if len(line) >= 15 {
		switch line[:15] {
		case configMarker:
			p.infof("config data found, skipping")
			return true, nil
		case eepromMarker:
			p.infof("EEPROM data found, skipping")
			return true, nil
		}
	}

	if len(line) < 9 {
		return false, &FormatError{Line: lineNum, Reason: "record too short"}
	}

	byteCount, err := hexField(line[1:3])
	if err != nil {
		return false, &FormatError{Line: lineNum, Reason: "bad byte count field"}
	}
	address, err := hexField(line[3:7])
	if err != nil {
		return false, &FormatError{Line: lineNum, Reason: "bad address field"}
	}
	recordType, err := hexField(line[7:9])
	if err != nil {
		return false, &FormatError{Line: lineNum, Reason: "bad record type field"}
	}

	if recordType != 0 {
		p.warnf("record of type %#04x, skipping", recordType)
		return true, nil
	}

	payload := line[9:]
	if len(payload) < 2*byteCount {
		return false, &FormatError{Line: lineNum, Reason: "record payload shorter than byte count"}
	}

	for i := 0; i < 2*byteCount; i += 2 {
		value, err := hexField(payload[i : i+2])
		if err != nil {
			return false, &FormatError{Line: lineNum, Reason: "bad data byte"}
		}
		img.Set(address, byte(value))
		address++
	}

	return false, nil
}

// hexField decodes a fixed-width big-endian hex field.
func hexField(s string) (int, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	return int(v), err
}

func (p *parser) infof(format string, args ...interface{}) {
	if p.log != nil {
		p.log.Infof(format, args...)
	}
}

func (p *parser) warnf(format string, args ...interface{}) {
	if p.log != nil {
		p.log.Warnf(format, args...)
	}
}
