package codec

import (
	"bytes"
	"compress/gzip"
	"io"

	"golang.org/x/xerrors"
)

// GzipCodec is a transform codec that compresses bytes with gzip. It only
// makes sense inside a chain, after a codec that produces bytes.
//
// - implements codec.Codec
type gzipCodec struct{}

// NewGzip returns a codec that compresses bytes with gzip.
func NewGzip() Codec {
	return gzipCodec{}
}

// Encode implements codec.Codec. It returns the compressed bytes.
func (gzipCodec) Encode(value interface{}) ([]byte, error) {
	var data []byte

	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil, xerrors.Errorf("gzip codec expects bytes, got %T", value)
	}

	buffer := new(bytes.Buffer)

	writer := gzip.NewWriter(buffer)

	_, err := writer.Write(data)
	if err != nil {
		return nil, xerrors.Errorf("failed to compress: %v", err)
	}

	err = writer.Close()
	if err != nil {
		return nil, xerrors.Errorf("failed to close writer: %v", err)
	}

	return buffer.Bytes(), nil
}

// Decode implements codec.Codec. It returns the decompressed bytes.
func (gzipCodec) Decode(data []byte) (interface{}, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, xerrors.Errorf("failed to open reader: %v", err)
	}

	res, err := io.ReadAll(reader)
	if err != nil {
		return nil, xerrors.Errorf("failed to decompress: %v", err)
	}

	err = reader.Close()
	if err != nil {
		return nil, xerrors.Errorf("failed to close reader: %v", err)
	}

	return res, nil
}
