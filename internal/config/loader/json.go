package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

func parseJSON(source string, data []byte) (File, error) {
	var file File
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}
	return file, nil
}
