package pngforensic

import (
	"bytes"
	"unicode/utf8"
)

type textHandler struct{ baseHandler }

func newTextHandler() *textHandler {
	return &textHandler{baseHandler{
		typ:  "tEXt",
		spec: minLength(2),
		seed: []byte("A\x00"),
	}}
}

func (h *textHandler) split(c *Chunk) (keyword, text []byte, err error) {
	d := c.Data()
	if bytes.Count(d, []byte{0}) != 1 {
		return nil, nil, newErr(ErrInvalidChunkStructure, "tEXt payload must contain exactly one NUL separator")
	}
	sep := bytes.IndexByte(d, 0)
	if sep > 79 {
		return nil, nil, newErr(ErrInvalidChunkStructure, "tEXt keyword longer than 79 bytes")
	}
	return d[:sep], d[sep+1:], nil
}

func (h *textHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	kw, txt, err := h.split(c)
	if err != nil {
		return nil, err
	}
	return map[Key]interface{}{KeyKeyword: string(kw), KeyText: string(txt)}, nil
}

func (h *textHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	kw, txt, err := h.split(c)
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyKeyword:
		return string(kw), nil
	case KeyText:
		return string(txt), nil
	default:
		return h.baseHandler.Get(c, key, ihdr)
	}
}

func (h *textHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	s, ok := value.(string)
	if !ok {
		return newErr(ErrTypeError, "tEXt fields are strings")
	}
	kw, txt, err := h.split(c)
	if err != nil {
		return err
	}
	switch key {
	case KeyKeyword:
		if len(s) > 79 {
			return newErr(ErrValueError, "keyword longer than 79 bytes")
		}
		return c.SetData(append(append([]byte(s), 0), txt...))
	case KeyText:
		return c.SetData(append(append(kw, 0), s...))
	default:
		return h.baseHandler.Set(c, key, value, ihdr)
	}
}

func (h *textHandler) ValidatePayload(c *Chunk) bool {
	d := c.Data()
	sep := bytes.IndexByte(d, 0)
	return bytes.Count(d, []byte{0}) == 1 && sep <= 79
}

type zTextHandler struct{ baseHandler }

func newZTextHandler() *zTextHandler {
	return &zTextHandler{baseHandler{
		typ:  "zTXt",
		spec: minLength(3),
		seed: []byte("A\x00\x00"),
	}}
}

func (h *zTextHandler) parts(c *Chunk) (keyword []byte, method byte, compressed []byte, err error) {
	d := c.Data()
	sep := bytes.IndexByte(d, 0)
	if sep < 0 || sep > 79 {
		return nil, 0, nil, newErr(ErrInvalidChunkStructure, "zTXt keyword separator missing or too far in")
	}
	if len(d) < sep+2 {
		return nil, 0, nil, newErr(ErrInvalidChunkStructure, "zTXt payload too short for a compression method byte")
	}
	return d[:sep], d[sep+1], d[sep+2:], nil
}

func (h *zTextHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	kw, method, comp, err := h.parts(c)
	if err != nil {
		return nil, err
	}
	if method != 0 {
		return nil, newErr(ErrUnsupportedCompression, "zTXt compression method")
	}
	text, err := deflateDecompress(comp)
	if err != nil {
		return nil, newErr(ErrInvalidChunkStructure, "zTXt compressed text did not inflate: "+err.Error())
	}
	return map[Key]interface{}{KeyKeyword: string(kw), KeyText: string(text), KeyCompressionMethod: method}, nil
}

func (h *zTextHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	kw, method, comp, err := h.parts(c)
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyKeyword:
		return string(kw), nil
	case KeyCompressionMethod:
		return method, nil
	case KeyText:
		if method != 0 {
			return nil, newErr(ErrUnsupportedCompression, "zTXt compression method")
		}
		text, err := deflateDecompress(comp)
		if err != nil {
			return nil, newErr(ErrInvalidChunkStructure, "zTXt compressed text did not inflate: "+err.Error())
		}
		return string(text), nil
	default:
		return h.baseHandler.Get(c, key, ihdr)
	}
}

func (h *zTextHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	kw, method, _, err := h.parts(c)
	if err != nil {
		return err
	}
	switch key {
	case KeyKeyword:
		s, ok := value.(string)
		if !ok || len(s) > 79 {
			return newErr(ErrValueError, "keyword must be a string of at most 79 bytes")
		}
		return c.SetData(append(append([]byte(s), 0, method), mustZTXTCompressed(c)...))
	case KeyText:
		s, ok := value.(string)
		if !ok {
			return newErr(ErrTypeError, "text must be a string")
		}
		if method != 0 {
			return newErr(ErrUnsupportedCompression, "zTXt compression method")
		}
		comp, err := deflateCompress([]byte(s))
		if err != nil {
			return err
		}
		return c.SetData(append(append(append([]byte{}, kw...), 0, method), comp...))
	default:
		return h.baseHandler.Set(c, key, value, ihdr)
	}
}

func mustZTXTCompressed(c *Chunk) []byte {
	_, _, comp, err := (&zTextHandler{}).parts(c)
	if err != nil {
		return nil
	}
	return comp
}

func (h *zTextHandler) ValidatePayload(c *Chunk) bool {
	_, method, _, err := h.parts(c)
	return err == nil && method == 0
}

// iTXtHandler implements iTXt: keyword \0 compression_flag compression_method
// language \0 translated_keyword \0 text, where text is optionally
// zlib-compressed when compression_flag is 1.
type iTXtHandler struct{ baseHandler }

func newITXtHandler() *iTXtHandler {
	return &iTXtHandler{baseHandler{
		typ:  "iTXt",
		spec: minLength(12),
		seed: []byte("Comment\x00\x00\x00\x00\x00"),
	}}
}

type iTXtParts struct {
	keyword             []byte
	compressionFlag     byte
	compressionMethod   byte
	language            []byte
	translatedKeyword   []byte
	text                []byte
}

func (h *iTXtHandler) parse(c *Chunk) (*iTXtParts, error) {
	d := c.Data()
	sep1 := bytes.IndexByte(d, 0)
	if sep1 < 0 || sep1 > 79 {
		return nil, newErr(ErrInvalidChunkStructure, "iTXt keyword separator missing or too far in")
	}
	if len(d) < sep1+3 {
		return nil, newErr(ErrInvalidChunkStructure, "iTXt payload too short for compression fields")
	}
	flag := d[sep1+1]
	method := d[sep1+2]
	rest := d[sep1+3:]
	sep2 := bytes.IndexByte(rest, 0)
	if sep2 < 0 {
		return nil, newErr(ErrInvalidChunkStructure, "iTXt language tag separator missing")
	}
	language := rest[:sep2]
	rest = rest[sep2+1:]
	sep3 := bytes.IndexByte(rest, 0)
	if sep3 < 0 {
		return nil, newErr(ErrInvalidChunkStructure, "iTXt translated keyword separator missing")
	}
	return &iTXtParts{
		keyword:           d[:sep1],
		compressionFlag:   flag,
		compressionMethod: method,
		language:          language,
		translatedKeyword: rest[:sep3],
		text:              rest[sep3+1:],
	}, nil
}

func (p *iTXtParts) decodedText() (string, error) {
	if p.compressionFlag == 0 {
		if !utf8.Valid(p.text) {
			return "", newErr(ErrInvalidChunkStructure, "iTXt text is not valid UTF-8")
		}
		return string(p.text), nil
	}
	if p.compressionFlag != 1 {
		return "", newErr(ErrInvalidChunkStructure, "iTXt compression flag must be 0 or 1")
	}
	if p.compressionMethod != 0 {
		return "", newErr(ErrUnsupportedCompression, "iTXt compression method")
	}
	raw, err := deflateDecompress(p.text)
	if err != nil {
		return "", newErr(ErrInvalidChunkStructure, "iTXt compressed text did not inflate: "+err.Error())
	}
	if !utf8.Valid(raw) {
		return "", newErr(ErrInvalidChunkStructure, "iTXt text is not valid UTF-8")
	}
	return string(raw), nil
}

func (p *iTXtParts) encode() []byte {
	var b bytes.Buffer
	b.Write(p.keyword)
	b.WriteByte(0)
	b.WriteByte(p.compressionFlag)
	b.WriteByte(p.compressionMethod)
	b.Write(p.language)
	b.WriteByte(0)
	b.Write(p.translatedKeyword)
	b.WriteByte(0)
	b.Write(p.text)
	return b.Bytes()
}

func (h *iTXtHandler) GetAll(c *Chunk, ihdr *IHDRInfo) (map[Key]interface{}, error) {
	p, err := h.parse(c)
	if err != nil {
		return nil, err
	}
	text, err := p.decodedText()
	if err != nil {
		return nil, err
	}
	return map[Key]interface{}{
		KeyKeyword:             string(p.keyword),
		KeyCompressionFlag:     p.compressionFlag,
		KeyCompressionMethod:   p.compressionMethod,
		KeyLanguageTag:         string(p.language),
		KeyTranslatedKeyword:   string(p.translatedKeyword),
		KeyText:                text,
	}, nil
}

func (h *iTXtHandler) Get(c *Chunk, key Key, ihdr *IHDRInfo) (interface{}, error) {
	p, err := h.parse(c)
	if err != nil {
		return nil, err
	}
	switch key {
	case KeyKeyword:
		return string(p.keyword), nil
	case KeyCompressionFlag:
		return p.compressionFlag, nil
	case KeyCompressionMethod:
		return p.compressionMethod, nil
	case KeyLanguageTag:
		return string(p.language), nil
	case KeyTranslatedKeyword:
		return string(p.translatedKeyword), nil
	case KeyText:
		return p.decodedText()
	default:
		return h.baseHandler.Get(c, key, ihdr)
	}
}

func (h *iTXtHandler) Set(c *Chunk, key Key, value interface{}, ihdr *IHDRInfo) error {
	p, err := h.parse(c)
	if err != nil {
		return err
	}
	switch key {
	case KeyKeyword:
		s, ok := value.(string)
		if !ok || len(s) > 79 {
			return newErr(ErrValueError, "keyword must be a string of at most 79 bytes")
		}
		p.keyword = []byte(s)
	case KeyLanguageTag:
		s, ok := value.(string)
		if !ok {
			return newErr(ErrTypeError, "language tag must be a string")
		}
		p.language = []byte(s)
	case KeyTranslatedKeyword:
		s, ok := value.(string)
		if !ok {
			return newErr(ErrTypeError, "translated keyword must be a string")
		}
		p.translatedKeyword = []byte(s)
	case KeyText:
		s, ok := value.(string)
		if !ok {
			return newErr(ErrTypeError, "text must be a string")
		}
		if p.compressionFlag == 0 {
			p.text = []byte(s)
		} else {
			if p.compressionMethod != 0 {
				return newErr(ErrUnsupportedCompression, "iTXt compression method")
			}
			comp, err := deflateCompress([]byte(s))
			if err != nil {
				return err
			}
			p.text = comp
		}
	default:
		return h.baseHandler.Set(c, key, value, ihdr)
	}
	return c.SetData(p.encode())
}

func (h *iTXtHandler) ValidatePayload(c *Chunk) bool {
	p, err := h.parse(c)
	if err != nil {
		return false
	}
	_, err = p.decodedText()
	return err == nil
}

func init() {
	register(newTextHandler())
	register(newZTextHandler())
	register(newITXtHandler())
}
