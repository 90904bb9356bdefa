package diagram

import (
	"fmt"
	"strings"
)

// ValidationError represents a single structural failure in a document.
type ValidationError struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"` // error
	ElementID  string `json:"element_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (e ValidationError) Error() string {
	if e.ElementID != "" {
		return e.ElementID + ": " + e.Message
	}
	return e.Message
}

// ValidationErrors is the full list of failures; it is returned as the cause
// of an INVALID_DOCUMENT error.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func schemaErr(id, msg, suggestion string) ValidationError {
	return ValidationError{Type: "schema_error", Severity: "error", ElementID: id, Message: msg, Suggestion: suggestion}
}

// Validate checks ids, sizes, references and style values.
func Validate(d *Document) []ValidationError {
	if d == nil {
		return []ValidationError{schemaErr("", "document is nil", "")}
	}
	var errs []ValidationError
	seen := make(map[string]bool)
	claim := func(kind string, i int, id string) bool {
		switch {
		case id == "":
			errs = append(errs, schemaErr("", fmt.Sprintf("%s at index %d has empty id", kind, i), "Set "+kind+".id"))
			return false
		case seen[id]:
			errs = append(errs, schemaErr(id, "duplicate id: "+id, "Use unique ids across nodes, links and containers"))
			return false
		}
		seen[id] = true
		return true
	}

	nodes := make(map[string]bool)
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if claim("node", i, n.ID) {
			nodes[n.ID] = true
		}
		if n.Width <= 0 || n.Height <= 0 {
			errs = append(errs, schemaErr(n.ID, "node size must be positive", "Set width and height greater than zero"))
		}
		if n.Layer != nil && *n.Layer < 0 {
			errs = append(errs, schemaErr(n.ID, "layer must not be negative", ""))
		}
		if !knownBorder(n.Style.Border) {
			errs = append(errs, schemaErr(n.ID, "unknown border style: "+string(n.Style.Border), "Use solid, dashed or dotted"))
		}
		if o := n.Style.FillOpacity; o != nil && (*o < 0 || *o > 1) {
			errs = append(errs, schemaErr(n.ID, "fill opacity must be within [0, 1]", ""))
		}
		if f, v, bad := badColor(n.Style.colors()...); bad {
			errs = append(errs, colorErr(n.ID, f, v))
		}
	}

	for i := range d.Links {
		l := &d.Links[i]
		claim("link", i, l.ID)
		if l.Source == "" || l.Target == "" {
			errs = append(errs, schemaErr(l.ID, fmt.Sprintf("link at index %d must have source and target", i),
				"Set link.source and link.target to node ids"))
		} else {
			if !nodes[l.Source] {
				errs = append(errs, schemaErr(l.ID, "link source node not found: "+l.Source, "Reference an existing node id"))
			}
			if !nodes[l.Target] {
				errs = append(errs, schemaErr(l.ID, "link target node not found: "+l.Target, "Reference an existing node id"))
			}
		}
		if !knownArrowhead(l.Style.Arrowhead) {
			errs = append(errs, schemaErr(l.ID, "unknown arrowhead: "+string(l.Style.Arrowhead), "Use triangle, open, diamond or circle"))
		}
		if !knownLine(l.Style.Line) {
			errs = append(errs, schemaErr(l.ID, "unknown line style: "+string(l.Style.Line), "Use straight, curved, elbow or orthogonal"))
		}
		if f, v, bad := badColor(l.Style.colors()...); bad {
			errs = append(errs, colorErr(l.ID, f, v))
		}
	}

	for i := range d.Containers {
		c := &d.Containers[i]
		claim("container", i, c.ID)
		if !c.Type.Known() {
			errs = append(errs, schemaErr(c.ID, "unknown container type: "+string(c.Type), "Use tier, vnet, region, az or subnet"))
		}
		if c.Width <= 0 || c.Height <= 0 {
			errs = append(errs, schemaErr(c.ID, "container size must be positive", ""))
		}
		for _, ch := range c.Children {
			if !nodes[ch] {
				errs = append(errs, schemaErr(c.ID, "container child not found: "+ch, "Reference an existing node id"))
			}
		}
		if !knownBorder(c.Style.Border) {
			errs = append(errs, schemaErr(c.ID, "unknown border style: "+string(c.Style.Border), "Use solid, dashed or dotted"))
		}
		if f, v, bad := badColor(c.Style.colors()...); bad {
			errs = append(errs, colorErr(c.ID, f, v))
		}
	}
	return errs
}

func colorErr(id, field, value string) ValidationError {
	return schemaErr(id, fmt.Sprintf("invalid %s: %q", field, value), "Use a #rgb or #rrggbb hex color or a color name")
}
