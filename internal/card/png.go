package card

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// PNG card embedding: the card JSON travels base64-encoded in a tEXt chunk
// keyed "chara", inserted before IEND. Readers that don't know the chunk
// ignore it, so the file stays a valid image.

const charaKeyword = "chara"

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// chunk is one PNG chunk.
type chunk struct {
	typ  string
	data []byte
}

// EmbedChara writes a copy of the PNG in img with the card payload embedded
// as a tEXt "chara" chunk. Any existing chara chunk is replaced.
func EmbedChara(img []byte, cardJSON []byte) ([]byte, error) {
	r := bytes.NewReader(img)
	if err := readSignature(r); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(pngSignature)

	encoded := base64.StdEncoding.EncodeToString(cardJSON)
	charaChunk := textChunk(charaKeyword, encoded)

	wroteIEND := false
	for {
		ch, err := readChunk(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		// Drop any prior chara chunk
		if ch.typ == "tEXt" && textKeyword(ch.data) == charaKeyword {
			continue
		}

		if ch.typ == "IEND" {
			writeChunk(&out, charaChunk)
			writeChunk(&out, ch)
			wroteIEND = true
			break
		}

		writeChunk(&out, ch)
	}

	if !wroteIEND {
		return nil, errors.New("png: missing IEND chunk")
	}
	return out.Bytes(), nil
}

// ExtractChara reads the embedded card payload from a PNG, decoding the
// base64 tEXt value. Unencoded legacy payloads are returned as-is.
func ExtractChara(img []byte) ([]byte, error) {
	r := bytes.NewReader(img)
	if err := readSignature(r); err != nil {
		return nil, err
	}

	for {
		ch, err := readChunk(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if ch.typ == "tEXt" && textKeyword(ch.data) == charaKeyword {
			parts := bytes.SplitN(ch.data, []byte{0}, 2)
			if len(parts) != 2 {
				return nil, errors.New("png: malformed chara chunk")
			}
			decoded, err := base64.StdEncoding.DecodeString(string(parts[1]))
			if err != nil {
				return parts[1], nil
			}
			return decoded, nil
		}

		if ch.typ == "IEND" {
			break
		}
	}

	return nil, errors.New("png: no chara chunk found")
}

// readSignature consumes and checks the 8-byte PNG magic.
func readSignature(r io.Reader) error {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("png: read signature: %w", err)
	}
	if !bytes.Equal(header, pngSignature) {
		return errors.New("png: not a valid PNG file")
	}
	return nil
}

// readChunk reads one chunk: length, type, data, CRC.
func readChunk(r io.Reader) (*chunk, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("png: read chunk length: %w", err)
	}

	typeAndData := make([]byte, 4+length)
	if _, err := io.ReadFull(r, typeAndData); err != nil {
		return nil, fmt.Errorf("png: read chunk body: %w", err)
	}

	var crc uint32
	if err := binary.Read(r, binary.BigEndian, &crc); err != nil {
		return nil, fmt.Errorf("png: read chunk crc: %w", err)
	}

	return &chunk{typ: string(typeAndData[:4]), data: typeAndData[4:]}, nil
}

// writeChunk writes one chunk with a freshly computed CRC.
func writeChunk(w io.Writer, ch *chunk) {
	binary.Write(w, binary.BigEndian, uint32(len(ch.data)))
	io.WriteString(w, ch.typ)
	w.Write(ch.data)

	crc := crc32.NewIEEE()
	crc.Write([]byte(ch.typ))
	crc.Write(ch.data)
	binary.Write(w, binary.BigEndian, crc.Sum32())
}

// textChunk builds a tEXt chunk for keyword and text.
func textChunk(keyword, text string) *chunk {
	data := append([]byte(keyword), 0)
	data = append(data, []byte(text)...)
	return &chunk{typ: "tEXt", data: data}
}

// textKeyword returns the keyword of a tEXt chunk payload.
func textKeyword(data []byte) string {
	return string(bytes.SplitN(data, []byte{0}, 2)[0])
}
