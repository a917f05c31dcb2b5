package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// requestError is a malformed request that never reaches the service.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func readBody(r *http.Request, limit int64) ([]byte, error) {
	defer r.Body.Close()
	lr := io.LimitReader(r.Body, limit+1)

	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, &requestError{msg: "failed to read body"}
	}
	if int64(len(b)) > limit {
		return nil, &requestError{msg: "payload too large"}
	}
	return b, nil
}

// decodeBody reads one JSON value, checks it against schema and decodes it
// into v. Shape problems come back as *todo.ValidationError.
func decodeBody(r *http.Request, schema *jsonschema.Schema, v any) error {
	body, err := readBody(r, maxBodyBytes)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &requestError{msg: "invalid JSON: empty body"}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &requestError{msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if dec.More() {
		return &requestError{msg: "invalid JSON: multiple JSON values"}
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return schemaFieldErrors(ve)
		}
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &requestError{msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}
