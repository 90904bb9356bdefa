package diagram

import (
	"bytes"
	"encoding/json"

	"github.com/archsketch/engine/internal/errors"
)

// Import decodes and validates an exchange-format document. The top-level
// object must carry title, nodes and links; containers is optional.
func Import(data []byte) (Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "document is not a JSON object")
	}

	var missing ValidationErrors
	require := func(field string, open byte) {
		v, ok := raw[field]
		switch {
		case !ok:
			missing = append(missing, schemaErr("", field+" is required", "Add a top-level "+field+" field"))
		case firstByte(v) != open:
			missing = append(missing, schemaErr("", field+" has the wrong type", ""))
		}
	}
	require("title", '"')
	require("nodes", '[')
	require("links", '[')
	if v, ok := raw["containers"]; ok && firstByte(v) != '[' && firstByte(v) != 'n' {
		missing = append(missing, schemaErr("", "containers has the wrong type", ""))
	}
	if len(missing) > 0 {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, missing, "document is missing required fields")
	}

	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode document")
	}
	if errs := Validate(&d); len(errs) > 0 {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, ValidationErrors(errs), "document failed validation")
	}
	return d.normalize(), nil
}

// Export encodes d in the exchange format.
func Export(d Document) ([]byte, error) {
	d = d.Normalize()
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return append(data, '\n'), nil
}

func firstByte(v json.RawMessage) byte {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return 0
	}
	return v[0]
}
